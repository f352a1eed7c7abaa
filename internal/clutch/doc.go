// Package clutch implements the CLUTCH ceremony: a one-time
// N-party key-generation protocol that combines the eight-primitive bundle
// (internal/crypto) into a single 256-byte shared seed, from which
// internal/chain initializes each participant's rolling chain state.
//
// A Ceremony has no designated initiator. It moves through
// Idle -> Collecting -> Responding -> Deriving -> Established, or aborts to
// Failed on any mismatch. Offers and Responses are plain data the caller is
// responsible for transporting; Ceremony only validates and folds them in.
package clutch
