// Package main runs the in-memory HTTP relay used by ciphera during
// development and tests. It stores registered handle-hash public keys and
// queues opaque ceremony/envelope payloads for recipients. Fetching does not
// remove a payload: envelopes stay queued until acknowledged, and every
// queue keeps at most its newest 1000 payloads. It never sees a handle or
// plaintext — only handle hashes and ciphertext.
//
// HTTP API
//
//	POST /register
//	    Store a handle hash's long-term X25519 public key.
//
//	GET /canary/{handle_hash}
//	    Return the relay-observed canary string for {handle_hash}, derived
//	    from its registered public key, so a client can detect an
//	    unexpected key change.
//
//	POST /ceremony/{handle_hash} { "payload": "<base64>" }
//	    Enqueue a CLUTCH ceremony message for {handle_hash}.
//
//	GET /ceremony/{handle_hash}?limit=N
//	    Return up to N queued ceremony payloads for {handle_hash}.
//
//	POST /envelope/{handle_hash} { "payload": "<base64>" }
//	    Enqueue a wire-encoded Envelope for {handle_hash}.
//
//	GET /envelope/{handle_hash}?limit=N
//	    Return up to N queued envelope payloads for {handle_hash}.
//
//	POST /envelope/{handle_hash}/ack { "count": N }
//	    Drop the first N queued envelopes for {handle_hash}.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Responses are JSON. Non-2xx statuses carry a short error message.
//   - A lightweight access log records method, path, remote, status, bytes and
//     duration for each request.
//   - The default listen address is :8080.
//
// This relay is intended for local use or as an untrusted middleman on a
// private network. It never sees plaintext or private keys; it only stores
// ciphertext and public keys.
package main
