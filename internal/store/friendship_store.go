package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"ciphera/internal/domain"
)

var (
	bucketFriendships = []byte("friendships")
	bucketPending     = []byte("pending_messages")
)

// FriendshipBoltStore persists FriendshipChains and their queued outbound
// messages in a single bbolt file, one bucket per concern. bbolt gives the
// same crash-safe, single-writer guarantee the atomic-rename JSON files
// give identity/account state, but scales to the many small per-friendship
// records this store accumulates over a long-running peer.
type FriendshipBoltStore struct {
	db *bbolt.DB
}

// NewFriendshipBoltStore opens (creating if absent) a bbolt database at path.
func NewFriendshipBoltStore(path string) (*FriendshipBoltStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open friendship store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketFriendships); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketPending)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &FriendshipBoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *FriendshipBoltStore) Close() error { return s.db.Close() }

// SaveFriendshipChains writes fc, keyed by its friendship id.
func (s *FriendshipBoltStore) SaveFriendshipChains(fc domain.FriendshipChains) error {
	b, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFriendships).Put(fc.FriendshipID[:], b)
	})
}

// LoadFriendshipChains reads the chains for friendshipID.
func (s *FriendshipBoltStore) LoadFriendshipChains(
	friendshipID domain.FriendshipID,
) (domain.FriendshipChains, bool, error) {
	var fc domain.FriendshipChains
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketFriendships).Get(friendshipID[:])
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &fc)
	})
	return fc, found, err
}

// ListFriendshipIDs enumerates every friendship with stored chains.
func (s *FriendshipBoltStore) ListFriendshipIDs() ([]domain.FriendshipID, error) {
	var ids []domain.FriendshipID
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFriendships).ForEach(func(k, _ []byte) error {
			var id domain.FriendshipID
			copy(id[:], k)
			ids = append(ids, id)
			return nil
		})
	})
	return ids, err
}

// DeleteFriendshipChains removes a friendship's chains and any messages
// still queued for it.
func (s *FriendshipBoltStore) DeleteFriendshipChains(friendshipID domain.FriendshipID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketFriendships).Delete(friendshipID[:]); err != nil {
			return err
		}
		prefix := friendshipID[:]
		c := tx.Bucket(bucketPending).Cursor()
		for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

// pendingKey groups a PendingMessage under its friendship id, ordered by
// plaintext hash so ForEach with a prefix Seek enumerates one friendship's
// queue contiguously.
func pendingKey(friendshipID domain.FriendshipID, plaintextHash [32]byte) []byte {
	key := make([]byte, 0, 32+32)
	key = append(key, friendshipID[:]...)
	key = append(key, plaintextHash[:]...)
	return key
}

func hasPrefix(k, prefix []byte) bool {
	return len(k) >= len(prefix) && string(k[:len(prefix)]) == string(prefix)
}

// SavePendingMessage enqueues msg for friendshipID, retained until acked.
func (s *FriendshipBoltStore) SavePendingMessage(
	friendshipID domain.FriendshipID,
	msg domain.PendingMessage,
) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	key := pendingKey(friendshipID, msg.PlaintextHash)
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPending).Put(key, b)
	})
}

// ListPendingMessages returns friendshipID's queued messages, oldest first.
func (s *FriendshipBoltStore) ListPendingMessages(
	friendshipID domain.FriendshipID,
) ([]domain.PendingMessage, error) {
	var msgs []domain.PendingMessage
	prefix := friendshipID[:]
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketPending).Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var m domain.PendingMessage
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			msgs = append(msgs, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortPendingByTimestamp(msgs)
	return msgs, nil
}

func sortPendingByTimestamp(msgs []domain.PendingMessage) {
	for i := 1; i < len(msgs); i++ {
		for j := i; j > 0 && msgs[j-1].Timestamp > msgs[j].Timestamp; j-- {
			msgs[j-1], msgs[j] = msgs[j], msgs[j-1]
		}
	}
}

// DeletePendingMessage removes one acknowledged message from the queue.
func (s *FriendshipBoltStore) DeletePendingMessage(
	friendshipID domain.FriendshipID,
	plaintextHash [32]byte,
) error {
	key := pendingKey(friendshipID, plaintextHash)
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPending).Delete(key)
	})
}

var _ domain.FriendshipStore = (*FriendshipBoltStore)(nil)
