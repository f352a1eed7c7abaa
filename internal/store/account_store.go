package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"ciphera/internal/domain"
)

const accountsFile = "accounts.json"

// AccountFileStore persists per-relay account profiles to disk.
type AccountFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewAccountFileStore returns an AccountFileStore rooted at dir.
func NewAccountFileStore(dir string) *AccountFileStore {
	return &AccountFileStore{dir: dir}
}

// SaveRelayProfile stores or updates the given profile.
func (s *AccountFileStore) SaveRelayProfile(profile domain.RelayProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, accountsFile)
	profiles := make(map[string]domain.RelayProfile)
	_ = readJSON(path, &profiles)
	profiles[accountKey(profile.ServerURL, profile.Handle)] = profile
	return writeJSON(path, profiles, 0o600)
}

// LoadRelayProfile retrieves a profile for (serverURL, handle).
func (s *AccountFileStore) LoadRelayProfile(
	serverURL string,
	handle domain.Handle,
) (domain.RelayProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, accountsFile)
	profiles := make(map[string]domain.RelayProfile)
	if err := readJSON(path, &profiles); err != nil {
		return domain.RelayProfile{}, false, err
	}
	profile, ok := profiles[accountKey(serverURL, handle)]
	return profile, ok, nil
}

func accountKey(serverURL string, handle domain.Handle) string {
	return fmt.Sprintf("%s|%s", serverURL, handle.String())
}

// Compile-time assertion that AccountFileStore implements domain.AccountStore.
var _ domain.AccountStore = (*AccountFileStore)(nil)
