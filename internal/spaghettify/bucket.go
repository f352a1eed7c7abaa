package spaghettify

import (
	"math/big"
)

// bucket is one of the 53 256-bit integers SPAGHETTIFY mixes. It is backed
// by math/big rather than a hand-rolled limb type: the arithmetic here
// (saturating add/sub, wrapping multiply, integer sqrt, population count) is
// bespoke to this construction and no third-party 256-bit integer library
// in the retrieved examples targets generic saturating/wrapping integer math
// outside a specific elliptic-curve field, so math/big is the justified
// stdlib choice (see DESIGN.md).
type bucket struct {
	v *big.Int
}

var (
	bucketMod   = new(big.Int).Lsh(big.NewInt(1), 256)
	bucketMax   = new(big.Int).Sub(bucketMod, big.NewInt(1))
	bucketZero  = big.NewInt(0)
)

func newBucket() bucket { return bucket{v: new(big.Int)} }

func bucketFromBytes(b []byte) bucket {
	v := new(big.Int).SetBytes(b)
	v.And(v, bucketMax)
	return bucket{v: v}
}

func (b bucket) bytes() [32]byte {
	var out [32]byte
	raw := b.v.Bytes()
	copy(out[32-len(raw):], raw)
	return out
}

func (b bucket) clone() bucket {
	return bucket{v: new(big.Int).Set(b.v)}
}

// wrap reduces v modulo 2^256 in place.
func (b bucket) wrap() bucket {
	b.v.And(b.v, bucketMax)
	return b
}

func satAdd(a, c bucket) bucket {
	r := new(big.Int).Add(a.v, c.v)
	if r.Cmp(bucketMax) > 0 {
		r.Set(bucketMax)
	}
	return bucket{v: r}
}

func satSub(a, c bucket) bucket {
	r := new(big.Int).Sub(a.v, c.v)
	if r.Sign() < 0 {
		r.Set(bucketZero)
	}
	return bucket{v: r}
}

func wrapAdd(a, c bucket) bucket {
	r := new(big.Int).Add(a.v, c.v)
	return bucket{v: r}.wrap()
}

func bucketAnd(a, c bucket) bucket { return bucket{v: new(big.Int).And(a.v, c.v)} }
func bucketOr(a, c bucket) bucket  { return bucket{v: new(big.Int).Or(a.v, c.v)} }
func bucketXor(a, c bucket) bucket { return bucket{v: new(big.Int).Xor(a.v, c.v)} }

// wrapMulOdd multiplies a by c forced odd (c|1), modulo 2^256.
func wrapMulOdd(a, c bucket) bucket {
	odd := new(big.Int).Or(c.v, big.NewInt(1))
	r := new(big.Int).Mul(a.v, odd)
	return bucket{v: r}.wrap()
}

// isqrt returns the integer square root of a.
func isqrt(a bucket) bucket {
	r := new(big.Int).Sqrt(a.v)
	return bucket{v: r}
}

// popcount returns the Hamming weight of a as a bucket value.
func popcount(a bucket) bucket {
	n := 0
	for _, w := range a.v.Bits() {
		n += popcountWord(uint64(w))
	}
	return bucket{v: big.NewInt(int64(n))}
}

func popcountWord(w uint64) int {
	n := 0
	for w != 0 {
		w &= w - 1
		n++
	}
	return n
}

// rotl256 rotates a left by n bits within the 256-bit field.
func rotl256(a bucket, n uint) bucket {
	n %= 256
	if n == 0 {
		return a.clone()
	}
	left := new(big.Int).Lsh(a.v, n)
	left.And(left, bucketMax)
	right := new(big.Int).Rsh(a.v, 256-n)
	return bucket{v: new(big.Int).Or(left, right)}
}

func rotr256(a bucket, n uint) bucket {
	n %= 256
	return rotl256(a, 256-n)
}

// lowUint64 returns the lowest 64 bits of a, independent of the host
// big.Word size (32-bit vs 64-bit platforms internally chunk differently).
func (b bucket) lowUint64() uint64 {
	masked := new(big.Int).And(b.v, new(big.Int).SetUint64(^uint64(0)))
	return masked.Uint64()
}
