package settings

import "sync"

type Arguments struct {
	// The directory where data files (snapshots, the user store) live
	DataDir string

	// Directory to store log files
	LogDir string

	// Path to the SQLite database file backing the admin tables
	DBFile string

	ConfigFile string

	// The mode of operation
	// standalone, cluster
	Mode string

	// the host name or IP address to listen on
	Host string

	// the port number to listen on
	Port int

	// Strongly verbose logging
	Verbose bool

	Debug bool

	// Print log messages to the screen as well as the log file
	PrintToScreen bool

	AuthEnabled bool // Enable authentication

	// Key used to encrypt the admin user store file
	SecretKey string

	Version string
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the global settings instance
func GetSettings() *Arguments {
	once.Do(func() {
		instance = &Arguments{}
	})
	return instance
}
