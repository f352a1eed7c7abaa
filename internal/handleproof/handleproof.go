package handleproof

import (
	"encoding/binary"

	"ciphera/internal/domainsep"
	"ciphera/internal/smear"
)

const (
	scratchBytes = domainsep.HandleProofScratchBytes
	rounds       = domainsep.HandleProofRounds
)

// Compute derives handle_proof from handle_hash. It is a pure, deterministic
// function: the same handle_hash always yields the same handle_proof, and
// callers can verify a claimed proof by recomputing it.
func Compute(handleHash [32]byte) [32]byte {
	return ComputeWithDomain(domainsep.HandleProof, handleHash[:])
}

// ComputeWithDomain runs the same ~25 MB memory-hard hardening pass used by
// Compute, but over an arbitrary domain-separated input. ceremony_id
// reuses this construction with domainsep.CeremonyID
// over a sorted handle_hash list, rather than defining a second memory-hard
// function from scratch.
func ComputeWithDomain(domain, input []byte) [32]byte {
	scratch := make([]byte, scratchBytes)
	seed := append(append([]byte{}, domain...), input...)
	roundHash := smear.Hash(seed)

	for r := 0; r < rounds; r++ {
		fillSize := fillSizeFor(roundHash, scratchBytes)
		fillSequentialChain(scratch[:fillSize], roundHash)
		dataDependentReadPass(scratch[:fillSize], roundHash)
		roundHash = smear.Hash(scratch)
	}
	return roundHash
}

// fillSizeFor chooses a fill size within a fraction of the buffer,
// determined by the round hash, so the buffer layout cannot be
// precomputed ahead of time.
func fillSizeFor(roundHash [32]byte, capacity int) int {
	frac := binary.BigEndian.Uint32(roundHash[:4])
	// Fill between 25% and 100% of the buffer.
	quarter := capacity / 4
	span := capacity - quarter
	return quarter + int(uint64(frac)*uint64(span)/uint64(1<<32))
}

// fillSequentialChain fills buf with a non-seekable sequential hash chain:
// each 32-byte block depends on the previous.
func fillSequentialChain(buf []byte, seed [32]byte) {
	prev := seed
	for off := 0; off < len(buf); off += 32 {
		prev = smear.Hash(prev[:])
		end := off + 32
		if end > len(buf) {
			end = len(buf)
		}
		copy(buf[off:end], prev[:end-off])
	}
}

// dataDependentReadPass performs a cache-hostile pass of reads whose next
// index depends on the data just read.
func dataDependentReadPass(buf []byte, seed [32]byte) {
	if len(buf) < 32 {
		return
	}
	idx := binary.BigEndian.Uint64(seed[:8]) % uint64(len(buf)-31)
	blocks := len(buf) / 32
	acc := seed
	for i := 0; i < blocks; i++ {
		block := buf[idx : idx+32]
		acc = smear.Hash(append(append([]byte{}, acc[:]...), block...))
		idx = binary.BigEndian.Uint64(acc[:8]) % uint64(len(buf)-31)
	}
	copy(buf[len(buf)-32:], acc[:])
}
