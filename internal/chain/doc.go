// Package chain implements CHAIN: the rolling
// per-participant 512-link chain state, its advancement on acknowledgment,
// the scratch-pad generator, and the full message encrypt/decrypt pipeline
// built on top of them.
//
// A ParticipantChain is owned exclusively by the message pipeline that
// mutates it; this package's functions read or update a caller-supplied
// *ParticipantChain and hold no shared mutable state themselves. They do no
// locking; serializing access to a chain is left to the caller.
package chain
