package app

import (
	"net/http"
	"path/filepath"
	"time"

	"ciphera/internal/domain"
	"ciphera/internal/relay"
	chainsvc "ciphera/internal/services/chain"
	ceremonysvc "ciphera/internal/services/ceremony"
	identitysvc "ciphera/internal/services/identity"
	"ciphera/internal/store"
)

// defaultCeremonyDeadline bounds a CLUTCH ceremony's lifetime when Config
// doesn't specify one.
const defaultCeremonyDeadline = 5 * time.Minute

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	IdentityService domain.IdentityService
	CeremonyService domain.CeremonyService
	ChainService    domain.ChainService
	RelayClient     domain.RelayClient
	AccountStore    domain.AccountStore
	HTTPClient      *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	idStore := store.NewIdentityFileStore(cfg.Home)
	accountStore := store.NewAccountFileStore(cfg.Home)
	friendshipStore, err := store.NewFriendshipBoltStore(filepath.Join(cfg.Home, "friendships.db"))
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	relayClient := relay.NewHTTP(cfg.RelayURL, httpClient)

	deadline := cfg.CeremonyDeadline
	if deadline <= 0 {
		deadline = defaultCeremonyDeadline
	}

	idSvc := identitysvc.New(idStore)
	ceremonySvc := ceremonysvc.New(idStore, friendshipStore, relayClient, cfg.Handle, deadline)
	chainSvc := chainsvc.New(idStore, friendshipStore, relayClient, cfg.Handle)

	return &Wire{
		IdentityService: idSvc,
		CeremonyService: ceremonySvc,
		ChainService:    chainSvc,
		RelayClient:     relayClient,
		AccountStore:    accountStore,
		HTTPClient:      httpClient,
	}, nil
}
