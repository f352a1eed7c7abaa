// Package handleproof implements handle_proof: a ~1 second memory-hard
// function hardening a 32-byte handle_hash into a public 32-byte anti-
// squatting proof. It allocates a fixed ~25 MB scratch
// buffer for the duration of one computation and releases it immediately
// after.
package handleproof
