package chain

import (
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
	"ciphera/internal/smear"
	"ciphera/internal/spaghettify"
)

// NetworkID computes network_id = SPAGHETTIFY(domain_network_id ‖
// hash(plaintext)): a deterministic content identifier used
// as a storage filename and gap-recovery lookup key. The same plaintext on
// different devices yields the same network_id.
func NetworkID(plaintext []byte) domaintypes.NetworkID {
	ph := smear.Hash(plaintext)
	buf := append(append([]byte{}, domainsep.NetworkID...), ph[:]...)
	return domaintypes.NetworkID(spaghettify.Hash(buf))
}
