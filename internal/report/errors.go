package report

import (
	"errors"
	"strings"

	"github.com/sells-group/ads-report/internal/dataset"
	"github.com/sells-group/ads-report/internal/model"
)

// IsFatal reports whether err aborts a whole report rather than one chart.
func IsFatal(err error) bool {
	var cfgErr *model.ConfigurationError
	var schemaErr *dataset.SchemaError
	return errors.As(err, &cfgErr) || errors.As(err, &schemaErr)
}

// IsSchemaError reports whether err is caused by unresolved header columns.
func IsSchemaError(err error) bool {
	var schemaErr *dataset.SchemaError
	return errors.As(err, &schemaErr)
}

// Banner renders err as a single line suitable for an error banner.
func Banner(err error) string {
	if err == nil {
		return ""
	}

	var msg string
	var cfgErr *model.ConfigurationError
	var schemaErr *dataset.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		msg = "Missing required columns: " + strings.Join(schemaErr.Columns(), ", ")
	case errors.As(err, &cfgErr):
		msg = "Configuration error: " + cfgErr.Resource + ": " + cfgErr.Err.Error()
	default:
		msg = "Report failed: " + err.Error()
	}
	return strings.Join(strings.Fields(msg), " ")
}
