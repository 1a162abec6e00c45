package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value ("" when unset or not a string).
	GetString(key string) string

	// GetInt retrieves an integer value (0 when unset or not an integer).
	GetInt(key string) int

	// GetFloat retrieves a float value (0 when unset or not numeric).
	GetFloat(key string) float64

	// Set stores a configuration value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
