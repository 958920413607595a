package server

// Config is the web front-end configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string
}
