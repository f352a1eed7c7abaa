// Package spaghettify implements SPAGHETTIFY: a deterministic chaos
// amplifier over 53 buckets of 256-bit integers, 23 per-step operation
// choices, and a data-dependent round count in [11, 23]. It is a
// key-derivation / mixing primitive, not a general-purpose hash: collision
// resistance is explicitly not claimed.
package spaghettify
