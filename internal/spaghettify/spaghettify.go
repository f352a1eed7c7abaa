package spaghettify

import (
	"encoding/binary"
	"math/big"

	"ciphera/internal/domainsep"
	"ciphera/internal/dsf"
	"ciphera/internal/smear"
)

// Size is the length in bytes of a SPAGHETTIFY output.
const Size = 32

// bootstrapConstant is the fixed 64-byte ASCII nothing-up-my-sleeve seed,
// split into two 256-bit halves.
const bootstrapConstant = "SPAGHETTIFY-NOTHING-UP-MY-SLEEVE-CONSTANT-1234567890ABCDEF!!!!!!"

func bootstrapSeeds() (seed0, seed1 bucket) {
	const c = bootstrapConstant
	if len(c) != 64 {
		panic("spaghettify: bootstrap constant must be exactly 64 bytes")
	}
	return bucketFromBytes([]byte(c[:32])), bucketFromBytes([]byte(c[32:]))
}

// Hash runs SPAGHETTIFY over input and returns the 32-byte result.
func Hash(input []byte) [Size]byte {
	seed0, seed1 := bootstrapSeeds()
	seed0, seed1 = seedModify(seed0, seed1, input)
	buckets := expandBuckets(seed0, seed1)
	rounds := roundCount(buckets)
	for r := 0; r < rounds; r++ {
		buckets = chaosRound(buckets, r)
	}
	return collapse(buckets, input)
}

// seedModify folds input into the two seed buckets 32 bytes at a time.
func seedModify(seed0, seed1 bucket, input []byte) (bucket, bucket) {
	chunks := chunk32(input)
	for idx, c := range chunks {
		cb := bucketFromBytes(c)
		seed0 = bucketXor(seed0, cb)
		seed1 = wrapAdd(seed1, cb)
		seed0 = rotl256(seed0, 7)
		shift := uint(idx % 128)
		shifted := rotr256(cb, shift) // arithmetic right-shift-by-position approximated with a field rotation to stay within the 256-bit ring
		seed1 = bucketXor(seed1, shifted)
	}
	lenBucket := newBucket()
	lenBucket.v.SetUint64(uint64(len(input)))
	seed0 = wrapAdd(seed0, lenBucket)
	return seed0, seed1
}

func chunk32(input []byte) [][]byte {
	if len(input) == 0 {
		return [][]byte{make([]byte, 32)}
	}
	var chunks [][]byte
	for i := 0; i < len(input); i += 32 {
		end := i + 32
		if end > len(input) {
			padded := make([]byte, 32)
			copy(padded, input[i:])
			chunks = append(chunks, padded)
		} else {
			chunks = append(chunks, input[i:end])
		}
	}
	return chunks
}

// expandBuckets fills the 53 buckets from rotated combinations of the two
// seeds, then runs one cascade pass.
func expandBuckets(seed0, seed1 bucket) [domainsep.BucketCount]bucket {
	var buckets [domainsep.BucketCount]bucket
	for i := 0; i < domainsep.BucketCount; i++ {
		r0 := rotl256(seed0, uint(i*7))
		r1 := rotl256(seed1, uint(i*13))
		b := bucketXor(r0, r1)
		idxBucket := newBucket()
		idxBucket.v.SetInt64(int64(i))
		buckets[i] = wrapAdd(b, idxBucket)
	}
	for i := 0; i < domainsep.BucketCount; i++ {
		next := (i + 1) % domainsep.BucketCount
		idxBucket := newBucket()
		idxBucket.v.SetInt64(int64(i))
		buckets[next] = bucketXor(buckets[next], wrapAdd(buckets[i], idxBucket))
	}
	return buckets
}

// roundCount sums the low 128 bits of all buckets and derives R in [11,23].
func roundCount(buckets [domainsep.BucketCount]bucket) int {
	low128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	sum := new(big.Int)
	for _, b := range buckets {
		sum.Add(sum, new(big.Int).And(b.v, low128))
	}
	rem := new(big.Int).Mod(sum, big.NewInt(domainsep.RoundModulus))
	return domainsep.MinRounds + int(rem.Int64())
}

// chaosRound runs one round of the chaos cascade over all 53 buckets.
func chaosRound(buckets [domainsep.BucketCount]bucket, round int) [domainsep.BucketCount]bucket {
	out := buckets
	for i := 0; i < domainsep.BucketCount; i++ {
		value := buckets[i]
		opIdx := int(value.lowUint64() % domainsep.OperationCount)
		target := int(value.lowUint64() % domainsep.BucketCount)
		secondary := (target + domainsep.CrossBucketOffset) % domainsep.BucketCount

		result, swapWith := applyOperation(opIdx, buckets[i], buckets[secondary], round, i)
		constVal := roundConstant(round, i)
		out[target] = bucketXor(result, constVal)
		if swapWith >= 0 {
			out[target], out[swapWith] = out[swapWith], out[target]
		}
	}
	return out
}

// roundConstant derives the position-and-round-dependent XOR constant.
func roundConstant(round, idx int) bucket {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(round))
	binary.BigEndian.PutUint64(buf[8:16], uint64(idx))
	digest := smear.Hash(buf[:])
	return bucketFromBytes(digest[:])
}

// applyOperation selects one of the 23 operations. swapWith is >= 0 only for
// the conditional-swap operation, signalling the caller to also exchange the
// target bucket with swapWith, introducing path divergence between inputs
// differing by even a single bit.
func applyOperation(opIdx int, self, other bucket, round, idx int) (result bucket, swapWith int) {
	switch opIdx {
	case 0:
		return satAdd(self, other), -1
	case 1:
		return satSub(self, other), -1
	case 2:
		return bucketAnd(self, other), -1
	case 3:
		return bucketOr(self, other), -1
	case 4:
		return bucketXor(self, other), -1
	case 5:
		return wrapMulOdd(self, other), -1
	case 6:
		return isqrt(self), -1
	case 7:
		return popcount(self), -1
	case 8:
		return rotl256(self, uint(other.lowUint64()%256)), -1
	case 9:
		return rotr256(self, uint(other.lowUint64()%256)), -1
	case 10:
		// conditional swap: branch on self's low bit
		if self.lowUint64()&1 == 1 {
			return other, idx % domainsep.BucketCount
		}
		return self, -1
	case 11:
		return dsfOp(self, other, dsf.Sin), -1
	case 12:
		return dsfOp(self, other, dsf.Cos), -1
	case 13:
		return dsfOp(self, other, dsf.Ln), -1
	case 14:
		return dsfOp(self, other, dsf.Exp), -1
	case 15:
		return dsfOp(self, other, dsf.Atan), -1
	case 16:
		return dsfOp2(self, other, func(a, b dsf.Value) dsf.Value { return dsf.Pow(a, b) }), -1
	case 17:
		return dsfOp2(self, other, func(a, b dsf.Value) dsf.Value { return dsf.Hypot(a, b) }), -1
	case 18:
		return dsfOp(self, other, dsf.Tan), -1
	case 19:
		return rotl256(self, uint((round+idx)%256)), -1
	case 20:
		return rotr256(self, uint((round*7+idx*3)%256)), -1
	case 21:
		return wrapAdd(self, roundConstant(round, idx)), -1
	case 22:
		return bucketXor(self, roundConstant(round+1, idx)), -1
	default:
		return self, -1
	}
}

// bucketToValue interprets a bucket's low 32 bits as a DSF (fraction,
// exponent) pair.
func bucketToValue(b bucket) dsf.Value {
	low := b.lowUint64()
	return dsf.Value{
		Fraction: int16(uint16(low)),
		Exponent: int16(uint16(low >> 16)),
	}
}

func valueToBucketDelta(v dsf.Value) uint64 {
	return uint64(uint16(v.Fraction)) | uint64(uint16(v.Exponent))<<16
}

// dsfOp applies a one-argument DSF transcendental against self (keeping
// other as the secondary context value folded into the argument), embedding
// the result back into the low 32 bits of self so the full 256 bits of
// state keep flowing through the mix.
func dsfOp(self, other bucket, f func(dsf.Value) dsf.Value) bucket {
	a := bucketToValue(self)
	b := bucketToValue(other)
	arg := dsf.Add(a, dsf.Mul(b, dsf.FromFloat64(0.0001)))
	res := f(arg)
	return xorDelta(self, res)
}

func dsfOp2(self, other bucket, f func(a, b dsf.Value) dsf.Value) bucket {
	a := bucketToValue(self)
	b := bucketToValue(other)
	res := f(a, b)
	return xorDelta(self, res)
}

// xorDelta folds a DSF result's 32-bit pattern into self's low 32 bits, keeping
// the rest of the 256-bit state untouched so entropy keeps flowing.
func xorDelta(self bucket, res dsf.Value) bucket {
	out := self.clone()
	delta := new(big.Int).SetUint64(valueToBucketDelta(res))
	out.v.Xor(out.v, delta)
	return out
}

// collapse concatenates all 53 buckets, appends the original input, and
// feeds the result through smear_hash.
func collapse(buckets [domainsep.BucketCount]bucket, input []byte) [Size]byte {
	buf := make([]byte, 0, domainsep.BucketCount*32+len(input))
	for _, b := range buckets {
		bb := b.bytes()
		buf = append(buf, bb[:]...)
	}
	buf = append(buf, input...)
	return smear.Hash(buf)
}
