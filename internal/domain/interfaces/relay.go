package interfaces

import (
	"context"

	domaintypes "ciphera/internal/domain/types"
)

// RelayClient is how we talk to the central relay server, all with context.
// The relay is a dumb store-and-forward box: it never sees a handle, only
// handle hashes and opaque ceremony/envelope bytes.
type RelayClient interface {
	RegisterHandle(
		ctx context.Context,
		handleHash domaintypes.HandleHash,
		pub domaintypes.X25519Public,
	) error

	PublishCeremonyMessage(
		ctx context.Context,
		to domaintypes.HandleHash,
		payload []byte,
	) error
	FetchCeremonyMessages(
		ctx context.Context,
		handleHash domaintypes.HandleHash,
		limit int,
	) ([][]byte, error)

	SendEnvelope(ctx context.Context, to domaintypes.HandleHash, envelope []byte) error
	FetchEnvelopes(
		ctx context.Context,
		handleHash domaintypes.HandleHash,
		limit int,
	) ([][]byte, error)
	AckEnvelopes(ctx context.Context, handleHash domaintypes.HandleHash, count int) error

	FetchAccountCanary(ctx context.Context, handleHash domaintypes.HandleHash) (string, error)
}
