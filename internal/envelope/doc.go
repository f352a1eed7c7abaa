// Package envelope implements the self-describing binary wire format
//: a fixed header (magic, version, backward-compatibility
// version, header length, timestamp, body provenance hash, optional
// signature and signer public key) wrapping a sequence of named labeled
// sections, each holding an ordered collection of typed fields.
//
// Typed fields use a compact tag byte followed by a length-or-inline
// encoding: tags 0x01-0x08 are format-reserved with fixed inline widths,
// tags 0x40-0x42 are format-reserved and length-prefixed, and tag 0x80
// (TagWrappedBody) is application-encoded, carrying an embedded one-byte
// encoding identifier for the wrapping scheme.
package envelope
