package services

import (
	"time"

	"weddingsite/internal/domain"
)

type accessService struct {
	secrets map[domain.Gate]string
	checker domain.SecretChecker
	issuer  domain.TokenIssuer
	verify  domain.TokenVerifier
	expiry  time.Duration
}

// NewAccessService creates the shared-password gate for both access points.
// sitePassword gates the public site, adminPassword the admin panel.
func NewAccessService(sitePassword, adminPassword string, checker domain.SecretChecker, issuer domain.TokenIssuer, verifier domain.TokenVerifier, expiry time.Duration) domain.AccessService {
	return &accessService{
		secrets: map[domain.Gate]string{
			domain.GateSite:  sitePassword,
			domain.GateAdmin: adminPassword,
		},
		checker: checker,
		issuer:  issuer,
		verify:  verifier,
		expiry:  expiry,
	}
}

func (s *accessService) Verify(gate domain.Gate, password string) (string, time.Duration, error) {
	secret, ok := s.secrets[gate]
	if !ok || secret == "" || !s.checker.Check(secret, password) {
		return "", 0, domain.ErrAccessDenied
	}
	token, err := s.issuer.Issue(gate, s.expiry)
	if err != nil {
		return "", 0, err
	}
	return token, s.expiry, nil
}

func (s *accessService) IsGranted(gate domain.Gate, token string) bool {
	if token == "" {
		return false
	}
	got, err := s.verify.Verify(token)
	if err != nil {
		return false
	}
	// A site credential never opens the admin gate, but an admin credential
	// opens both.
	return got == gate || (got == domain.GateAdmin && gate == domain.GateSite)
}
