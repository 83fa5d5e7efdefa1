package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Metadata service errors
	ErrServiceRequest     = fmt.Errorf("metadata service request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRateLimited        = fmt.Errorf("rate limit retries exhausted")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Resolution errors
	ErrNoMatch    = fmt.Errorf("no acceptable match")
	ErrEmptyAlbum = fmt.Errorf("album listing returned no tracks")

	// Pipeline I/O errors; output write failures are fatal to a run
	ErrInputRead   = fmt.Errorf("failed to read input table")
	ErrOutputWrite = fmt.Errorf("failed to write output table")
	ErrStateWrite  = fmt.Errorf("failed to persist pipeline state")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
