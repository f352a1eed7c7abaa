// Package dsf implements the Deterministic Scalar Float: a non-IEEE
// floating-point representation that produces byte-identical results on any
// two conforming implementations regardless of host architecture, word size,
// or endianness.
//
// A value is a pair of signed 16-bit fixed-point integers (fraction,
// exponent). There is no family of NaN bit patterns; every domain violation
// collapses to one canonical Undefined value. Transcendental functions are
// computed by range reduction followed by a bounded Taylor series, never by
// calling into the host's floating-point unit.
package dsf
