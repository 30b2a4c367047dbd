package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrMissingAPIKey       = errors.New("api key is not configured")
)

type ErrBadRequest struct{ Err error }

func (e ErrBadRequest) Error() string { return e.Err.Error() }

func (e ErrBadRequest) Unwrap() error { return e.Err }

// ErrUpstream covers every non-success answer from the catalog or the
// identity provider: bad status, empty body, transport failure, timeout.
type ErrUpstream struct {
	Service string
	Status  int
	Msg     string
}

func (e ErrUpstream) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Service, e.Msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Msg)
}

// StatusCode is the preserved upstream status, or 500 when none applies.
func (e ErrUpstream) StatusCode() int {
	if e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// ErrCredential is a classified identity failure. Kind is one of the
// ErrUserNotFound / ErrInvalidPassword / ErrInvalidRefreshToken sentinels.
type ErrCredential struct {
	Kind error
	Msg  string
}

func (e ErrCredential) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.Error()
}

func (e ErrCredential) Unwrap() error { return e.Kind }

type ErrRegistration struct{ Err error }

func (e ErrRegistration) Error() string { return "registration failed" }

func (e ErrRegistration) Unwrap() error { return e.Err }

// transportError classifies a failed round trip. Timeouts map to 504.
func transportError(service string, err error) ErrUpstream {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return ErrUpstream{Service: service, Status: http.StatusGatewayTimeout, Msg: "request timed out"}
	}
	return ErrUpstream{Service: service, Msg: "service unavailable"}
}

// withoutURL drops the request URL from a round-trip error before it is
// logged. Catalog and identity URLs carry the api key in the query.
func withoutURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}
