package ports

// Frontend defines the interface for the serving surfaces that feed
// messages into the triage engine and expose its results
type Frontend interface {
	// Start starts the frontend
	Start() error

	// Stop stops the frontend
	Stop() error
}
