package ports

import "context"

// ParseResult is the non-throwing validation outcome returned by SafeParse.
type ParseResult struct {
	// Success reports whether the input satisfied the schema.
	Success bool

	// Data is the validated (and possibly coerced) output. Only set when
	// Success is true.
	Data any

	// Errors holds the field-level validation failures when Success is
	// false.
	Errors []error
}

// Validator is the schema-validation capability consumed by the engine.
// The engine never depends on a specific schema language, only on this
// surface. Implementations may perform asynchronous work (remote checks,
// debounced lookups) and must honor ctx cancellation.
type Validator interface {
	// Parse validates data and returns the validated output.
	// It returns an error when the data is invalid. Validation errors
	// should be distinguishable (see schema.IsValidationError) from
	// transport or programming errors.
	Parse(ctx context.Context, data any) (any, error)

	// SafeParse validates data without treating invalid input as an
	// error: validation failures are reported in the result. The returned
	// error is reserved for non-validation failures (cancellation,
	// transport, panics in custom checks).
	SafeParse(ctx context.Context, data any) (ParseResult, error)
}
