package cfg

type Cfg struct {
	// HTTP server configuration
	Host string
	Port string

	// Storage configuration
	StoragePath string

	// Synchronization configuration
	UpdateInterval int
	FetchTimeout   int
	UserAgent      string
	SeedFile       string

	// Application metadata
	Debug   bool
	Version string
}
