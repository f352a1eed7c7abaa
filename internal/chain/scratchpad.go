package chain

import (
	"encoding/binary"

	"ciphera/internal/domainsep"
	"ciphera/internal/smear"
)

// ScratchPad produces the 30 KB, L1-cache-sized mixing buffer for one
// message. Identical salt + currentKey
// always yields an identical scratch buffer.
func ScratchPad(currentKey [32]byte, salt [32]byte) []byte {
	buf := make([]byte, domainsep.ScratchPadBytes)

	var seed [32]byte
	for i := range seed {
		seed[i] = currentKey[i] ^ salt[i]
	}

	prev := seed
	for off := 0; off < len(buf); off += 32 {
		prev = smear.Hash(prev[:])
		end := off + 32
		if end > len(buf) {
			end = len(buf)
		}
		copy(buf[off:end], prev[:end-off])
	}

	for round := 0; round < domainsep.ScratchPadMixRounds; round++ {
		mixRound(buf)
	}
	return buf
}

// mixRound replaces every 32-byte block with smear_hash(self ‖
// buffer[data-dependent index]), one data-dependent mixing pass over the
// whole buffer.
func mixRound(buf []byte) {
	blocks := len(buf) / 32
	out := make([]byte, len(buf))
	for i := 0; i < blocks; i++ {
		self := buf[i*32 : i*32+32]
		idx := dataDependentBlockIndex(self, blocks)
		other := buf[idx*32 : idx*32+32]
		mixed := smear.Hash(append(append([]byte{}, self...), other...))
		copy(out[i*32:i*32+32], mixed[:])
	}
	copy(buf, out)
}

func dataDependentBlockIndex(block []byte, blocks int) int {
	v := binary.BigEndian.Uint64(block[:8])
	return int(v % uint64(blocks))
}
