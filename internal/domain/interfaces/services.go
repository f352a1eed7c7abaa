package interfaces

import (
	"context"

	domaintypes "ciphera/internal/domain/types"
)

// IdentityService creates, retrieves, and inspects your identity keys.
type IdentityService interface {
	GenerateIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// CeremonyService drives a CLUTCH ceremony from this party's side: starting
// one against a set of peer handles, and feeding it incoming ceremony
// messages until it reaches Established or Failed.
type CeremonyService interface {
	StartCeremony(
		ctx context.Context,
		passphrase string,
		peerHandles []domaintypes.Handle,
	) (domaintypes.CeremonyID, error)

	AdvanceCeremony(
		ctx context.Context,
		passphrase string,
		handleHash domaintypes.HandleHash,
	) (domaintypes.FriendshipChains, bool, error)
}

// ChainService encrypts, sends, fetches and decrypts messages over an
// established friendship's per-participant chains.
type ChainService interface {
	SendMessage(
		ctx context.Context,
		passphrase string,
		friendshipID domaintypes.FriendshipID,
		to domaintypes.Handle,
		plaintext []byte,
	) error
	ReceiveMessages(
		ctx context.Context,
		passphrase string,
		friendshipID domaintypes.FriendshipID,
		limit int,
	) ([]domaintypes.DecryptedMessage, error)
}
