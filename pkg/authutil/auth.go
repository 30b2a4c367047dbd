package authutil

import "strings"

// BearerToken memecah header Authorization menjadi scheme + token.
// The header is split on single spaces: the scheme must be exactly "Bearer"
// and the token is the second segment, which must not be empty. Anything
// after the token is ignored.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) < 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// MaskEmail keeps enough of an address to correlate log lines.
func MaskEmail(e string) string {
	e = strings.TrimSpace(e)
	parts := strings.Split(e, "@")
	if len(parts) != 2 {
		if len(e) > 3 {
			return e[:3] + "***"
		}
		return "***"
	}
	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = local + "***"
	}
	return local + "@" + domain
}

// ShortToken masks a credential for logging.
func ShortToken(t string) string {
	t = strings.TrimSpace(t)
	if len(t) <= 8 {
		return "***"
	}
	return t[:4] + "..." + t[len(t)-4:]
}
