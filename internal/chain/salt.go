package chain

import (
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
	"ciphera/internal/spaghettify"
)

// DeriveSalt computes salt = SPAGHETTIFY(domain_salt ‖ prev_plaintext ‖
// links[500-offset..512-offset)). For the first message, prevPlaintext is
// empty. Salt never goes on the wire; both sides recompute it from their
// own copy of prevPlaintext and the chain tail.
//
// offset is 0 at encryption time, binding the salt to the live tail. A
// receiver decrypting against history position o must pass the same o
// here: Advance left-shifts the whole link array by one per acknowledged
// message, so the tail window that was live o advances ago now sits at
// links[500-o..512-o).
func DeriveSalt(prevPlaintext []byte, c *domaintypes.ParticipantChain, offset int) [32]byte {
	buf := append([]byte{}, domainsep.Salt...)
	buf = append(buf, prevPlaintext...)
	from := domainsep.ChainLinks - 12 - offset
	to := domainsep.ChainLinks - offset
	for i := from; i < to; i++ {
		buf = append(buf, c.Links[i][:]...)
	}
	return spaghettify.Hash(buf)
}

// FirstMessageAnchor is the derived prev_msg_hp value used by the first
// message on a friendship, in place of a real predecessor's provenance
// hash.
func FirstMessageAnchor(friendshipID domaintypes.FriendshipID) [32]byte {
	buf := append([]byte{}, domainsep.FirstAnchor...)
	buf = append(buf, friendshipID[:]...)
	return spaghettify.Hash(buf)
}
