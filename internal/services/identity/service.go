// Package identity implements domain.IdentityService: generating, storing,
// and fingerprinting a local long-term identity.
package identity

import (
	"ciphera/internal/crypto"
	"ciphera/internal/domain"
)

// Service generates and retrieves the local X25519/Ed25519 identity.
type Service struct {
	store domain.IdentityStore
}

// New returns a Service backed by s.
func New(s domain.IdentityStore) *Service {
	return &Service{store: s}
}

var _ domain.IdentityService = (*Service)(nil)

// GenerateIdentity creates a fresh identity, persists it under passphrase,
// and returns it along with its public fingerprint.
func (s *Service) GenerateIdentity(passphrase string) (domain.Identity, domain.Fingerprint, error) {
	xpriv, xpub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.Identity{}, "", err
	}
	edpriv, edpub, err := crypto.GenerateEd25519()
	if err != nil {
		return domain.Identity{}, "", err
	}

	id := domain.Identity{
		XPriv:  xpriv,
		XPub:   xpub,
		EdPriv: edpriv,
		EdPub:  edpub,
	}
	if err := s.store.SaveIdentity(passphrase, id); err != nil {
		return domain.Identity{}, "", err
	}
	return id, domain.Fingerprint(crypto.Fingerprint(xpub.Slice())), nil
}

// LoadIdentity decrypts and returns the persisted identity.
func (s *Service) LoadIdentity(passphrase string) (domain.Identity, error) {
	return s.store.LoadIdentity(passphrase)
}

// FingerprintIdentity returns the persisted identity's public fingerprint.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	id, err := s.store.LoadIdentity(passphrase)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(crypto.Fingerprint(id.XPub.Slice())), nil
}
