package domain

import (
	"errors"
	"time"
)

// ErrAccessDenied is returned by the gates when the submitted password does
// not match the configured secret.
var ErrAccessDenied = errors.New("access denied")

// Gate names the two access points. Each has its own secret and cookie.
type Gate string

const (
	GateSite  Gate = "site"
	GateAdmin Gate = "admin"
)

// SecretChecker compares a submitted password against one fixed secret.
type SecretChecker interface {
	Check(secret, password string) bool
}

// TokenIssuer issues tokens (e.g. JWT) for a passed gate.
type TokenIssuer interface {
	Issue(gate Gate, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the gate it was issued for.
type TokenVerifier interface {
	Verify(token string) (Gate, error)
}

// AccessService is the shared-password gate: Verify trades a correct
// password for a short-lived credential; IsGranted checks a previously
// issued credential (missing/expired/invalid all read as false).
type AccessService interface {
	Verify(gate Gate, password string) (token string, expiry time.Duration, err error)
	IsGranted(gate Gate, token string) bool
}
