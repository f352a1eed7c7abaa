package app

import (
	"net/http"
	"time"

	domaintypes "ciphera/internal/domain/types"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home     string       // config directory, e.g. $HOME/.ciphera
	RelayURL string       // relay base URL, e.g. http://127.0.0.1:8080
	HTTP     *http.Client // optional; defaults to http.DefaultClient

	// Handle is the plaintext handle this invocation acts as. It is never
	// stored on the identity itself; it is supplied fresh per invocation
	// via the --handle flag.
	Handle domaintypes.Handle

	// CeremonyDeadline bounds how long a CLUTCH ceremony may remain
	// in-flight before it is considered abandoned.
	CeremonyDeadline time.Duration
}
