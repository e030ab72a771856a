// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeSourceUnreachable,
//	    "failed to fetch chart archive",
//	    fetchErr,
//	    map[string]interface{}{
//	        "url":     descriptor.Location,
//	        "cluster": clusterName,
//	    },
//	)
package errors
