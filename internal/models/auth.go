package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type RegisterRequest struct {
	FirstName   string `json:"firstName" validate:"required,notblank"`
	LastName    string `json:"lastName" validate:"required,notblank"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,notblank"`
	Password    string `json:"password" validate:"required,min=8,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=20"`
}

type RefreshRequest struct {
	RefreshToken string `query:"refreshToken" validate:"required,notblank"`
}

// AuthToken is the session triple handed back to the caller, who owns
// its persistence.
type AuthToken struct {
	IDToken      string  `json:"idToken"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresIn    Seconds `json:"expiresIn"`
}

// AccountRecord is the account created by the identity provider.
type AccountRecord struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	Disabled      bool   `json:"disabled"`
}

// Seconds decodes a lifetime sent either as a JSON number or as a
// numeric string ("3600"), and always encodes as a number.
type Seconds int64

func (s *Seconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		if str == "" {
			*s = 0
			return nil
		}
		b = []byte(str)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*s = Seconds(n)
	return nil
}
