package model

// ConfigurationError is fatal to a whole report: a required tool, input file
// or output directory is missing or unusable.
type ConfigurationError struct {
	Resource string
	Err      error
}

// NewConfigurationError wraps err as a configuration problem with resource.
func NewConfigurationError(resource string, err error) *ConfigurationError {
	return &ConfigurationError{Resource: resource, Err: err}
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Resource + ": " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
