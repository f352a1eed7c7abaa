package domain

import (
	interfaces "ciphera/internal/domain/interfaces"
	types "ciphera/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Handle           = types.Handle
	Fingerprint      = types.Fingerprint
	HandleHash       = types.HandleHash
	CeremonyID       = types.CeremonyID
	FriendshipID     = types.FriendshipID
	NetworkID        = types.NetworkID
	Identity         = types.Identity
	RelayProfile     = types.RelayProfile
	ParticipantChain = types.ParticipantChain
	FriendshipChains = types.FriendshipChains
	PendingMessage   = types.PendingMessage
	ReceivedMessage  = types.ReceivedMessage
	DecryptedMessage = types.DecryptedMessage
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private
	Ed25519Public    = types.Ed25519Public
	Ed25519Private   = types.Ed25519Private
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService  = interfaces.IdentityService
	CeremonyService  = interfaces.CeremonyService
	ChainService     = interfaces.ChainService
	RelayClient      = interfaces.RelayClient
	IdentityStore    = interfaces.IdentityStore
	FriendshipStore  = interfaces.FriendshipStore
	AccountStore     = interfaces.AccountStore
)
