package ports

// Trigger defines the interface for long-running trigger frontends
// that feed references into the forwarding service
type Trigger interface {
	// Start starts the trigger
	Start() error

	// Stop stops the trigger
	Stop() error
}
