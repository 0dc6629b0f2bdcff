package driven

// ConfigStore provides read access to process configuration: provider
// credentials, sink selection and daemon settings. Keys are dotted
// paths ("stripe.api_key").
type ConfigStore interface {
	// Get retrieves a raw value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, empty when absent.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 when absent.
	GetInt(key string) int

	// GetBool retrieves a boolean value, false when absent.
	GetBool(key string) bool

	// Watch registers a callback invoked after the underlying file
	// changes and has been reloaded. Used by the daemon to pick up
	// credential changes without a restart.
	Watch(fn func()) error

	// Close stops watching and releases resources.
	Close() error
}
