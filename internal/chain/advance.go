package chain

import (
	"encoding/binary"

	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
	"ciphera/internal/spaghettify"
)

// Advance applies one acknowledgment to chain in place: left-shift the links, derive a fresh current key from the
// acknowledged message's (timestamp, plaintext_hash), and record the
// acknowledgment time.
func Advance(c *domaintypes.ParticipantChain, timestamp int64, plaintextHash [32]byte) {
	var shifted [domainsep.ChainLinks][32]byte
	copy(shifted[:domainsep.ChainLinks-1], c.Links[1:])
	c.Links = shifted

	// links[256..511] inclusive, read after the shift but before this
	// step overwrites the (currently unset) new slot 511.
	fresh := freshLink(timestamp, c.Links[domainsep.ActiveWindowFrom:domainsep.ChainLinks], plaintextHash)
	c.Links[domainsep.CurrentKeyIndex] = fresh
	c.LastAckTime = timestamp
}

// freshLink computes fresh_link = SPAGHETTIFY(domain_advance ‖ T ‖
// links[256..511] ‖ H).
func freshLink(timestamp int64, activeLinksBeforeCurrent [][32]byte, plaintextHash [32]byte) [32]byte {
	buf := append([]byte{}, domainsep.Advance...)
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(timestamp))
	buf = append(buf, tsBuf[:]...)
	for _, l := range activeLinksBeforeCurrent {
		buf = append(buf, l[:]...)
	}
	buf = append(buf, plaintextHash[:]...)
	return spaghettify.Hash(buf)
}
