// Package commands defines the ciphera CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init              Create the local identity
//   - fingerprint       Print the identity fingerprint
//   - register          Publish your handle_hash and public key to a relay
//   - ceremony-start     Begin a CLUTCH ceremony with one or more peers
//   - ceremony-advance   Poll for ceremony messages and advance in-flight ceremonies
//   - send              Encrypt and send a message over an established friendship
//   - recv              Fetch and decrypt queued messages for a friendship
//
// # Implementation
//
// The root command constructs an HTTP client and builds a dependency graph
// (stores, services, relay client) before any subcommand runs, so handlers can
// use a shared app context with timeouts and connection pooling.
package commands
