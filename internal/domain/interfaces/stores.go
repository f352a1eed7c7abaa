package interfaces

import domaintypes "ciphera/internal/domain/types"

// IdentityStore persists your long-term identity keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}

// FriendshipStore persists established friendships' per-participant chains
// and the message queues riding on top of them.
type FriendshipStore interface {
	SaveFriendshipChains(fc domaintypes.FriendshipChains) error
	LoadFriendshipChains(
		friendshipID domaintypes.FriendshipID,
	) (domaintypes.FriendshipChains, bool, error)
	ListFriendshipIDs() ([]domaintypes.FriendshipID, error)
	DeleteFriendshipChains(friendshipID domaintypes.FriendshipID) error

	SavePendingMessage(friendshipID domaintypes.FriendshipID, msg domaintypes.PendingMessage) error
	ListPendingMessages(
		friendshipID domaintypes.FriendshipID,
	) ([]domaintypes.PendingMessage, error)
	DeletePendingMessage(
		friendshipID domaintypes.FriendshipID,
		plaintextHash [32]byte,
	) error
}
