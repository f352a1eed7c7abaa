package chain

import (
	"encoding/binary"

	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
	"ciphera/internal/smear"
)

// AckProof computes the ACK proof = smear_hash(domain_ack ‖ plaintext_hash
// ‖ timestamp ‖ links[507..512)). It deliberately uses a
// different domain, a different link range, and a different field order
// than freshLink, so neither value can be reinterpreted as the other.
func AckProof(plaintextHash [32]byte, timestamp int64, c *domaintypes.ParticipantChain) [32]byte {
	buf := append([]byte{}, domainsep.AckProof...)
	buf = append(buf, plaintextHash[:]...)
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(timestamp))
	buf = append(buf, tsBuf[:]...)
	for i := domainsep.ChainLinks - 5; i < domainsep.ChainLinks; i++ {
		buf = append(buf, c.Links[i][:]...)
	}
	return smear.Hash(buf)
}
