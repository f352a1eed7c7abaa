package chain

import (
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
	"ciphera/internal/smear"
)

// InitChains expands a 256-byte CLUTCH seed into one ParticipantChain per
// participant. Every
// party runs this over the identical seed and handle_hash list, so every
// party ends up holding byte-identical chains.
func InitChains(
	seed []byte,
	friendshipID domaintypes.FriendshipID,
	participants []domaintypes.HandleHash,
) domaintypes.FriendshipChains {
	anchor := FirstMessageAnchor(friendshipID)
	chains := make(map[string]*domaintypes.ParticipantChain, len(participants))
	for _, hh := range participants {
		c := initOne(seed, hh)
		c.LastMsgHP = anchor
		chains[hh.String()] = c
	}
	return domaintypes.FriendshipChains{
		FriendshipID: friendshipID,
		HandleHashes: append([]domaintypes.HandleHash{}, participants...),
		Chains:       chains,
	}
}

// initOne expands the seed through a memory-hard avalanche pass into a 2 MB
// buffer, then derives 256 links by truncate-and-append through smear_hash,
// placing them in the active window [256,512) and zeroing history [0,256).
func initOne(seed []byte, handleHash domaintypes.HandleHash) *domaintypes.ParticipantChain {
	avalanche := avalancheExpand(seed, handleHash, domainsep.ChainInitAvalancheBytes)

	var c domaintypes.ParticipantChain
	prev := smear.Hash(append(append([]byte{}, avalanche[:32]...), handleHash[:]...))
	for i := domainsep.ActiveWindowFrom; i < domainsep.ChainLinks; i++ {
		off := (i - domainsep.ActiveWindowFrom) * domainsep.LinkSize % len(avalanche)
		chunk := avalanche[off : off+domainsep.LinkSize]
		link := smear.Hash(append(append([]byte{}, prev[:]...), chunk...))
		c.Links[i] = link
		prev = link
	}
	return &c
}

// avalancheExpand is the memory-hard avalanche pass: a non-seekable
// sequential hash chain filling size bytes, seeded by the CLUTCH seed and
// the recipient's handle_hash so distinct participants' chains diverge
// from the very first link even though they share one seed.
func avalancheExpand(seed []byte, handleHash domaintypes.HandleHash, size int) []byte {
	buf := make([]byte, size)
	prev := smear.Hash(append(append([]byte{}, seed...), handleHash[:]...))
	for off := 0; off < size; off += smear.Size {
		prev = smear.Hash(prev[:])
		end := off + smear.Size
		if end > size {
			end = size
		}
		copy(buf[off:end], prev[:end-off])
	}
	return buf
}
