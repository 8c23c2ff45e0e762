package schema

import (
	"context"
	"fmt"

	"github.com/nmbl-labs/formpath/pkg/ports"
)

// Schema implements ports.Validator directly, so a step definition can
// carry a Schema without any wrapping.
var _ ports.Validator = Schema{}

// Parse validates data (which must be a map of field values) and returns
// it unchanged on success. Invalid input yields a validation error.
func (s Schema) Parse(ctx context.Context, data any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields, err := asFieldMap(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateMap(s, fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// SafeParse validates data without treating invalid input as an error.
func (s Schema) SafeParse(ctx context.Context, data any) (ports.ParseResult, error) {
	out, err := s.Parse(ctx, data)
	if err != nil {
		if IsValidationError(err) {
			return ports.ParseResult{Success: false, Errors: FieldErrors(err)}, nil
		}
		return ports.ParseResult{}, err
	}
	return ports.ParseResult{Success: true, Data: out}, nil
}

// asFieldMap normalizes the supported input shapes to map[string]any.
func asFieldMap(data any) (map[string]any, error) {
	switch v := data.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, &AggregateError{Errors: []error{
			&ValidationError{Reason: fmt.Sprintf("expected an object, got %T", data), Value: data},
		}}
	}
}

// Func adapts a plain validation function into a ports.Validator, for
// plugging in external schema libraries. The function should return a
// validation error (see IsValidationError) for invalid input and any
// other error for operational failures.
func Func(fn func(ctx context.Context, data any) (any, error)) ports.Validator {
	return funcValidator{fn: fn}
}

type funcValidator struct {
	fn func(ctx context.Context, data any) (any, error)
}

func (f funcValidator) Parse(ctx context.Context, data any) (any, error) {
	return f.fn(ctx, data)
}

func (f funcValidator) SafeParse(ctx context.Context, data any) (ports.ParseResult, error) {
	out, err := f.fn(ctx, data)
	if err != nil {
		if IsValidationError(err) {
			return ports.ParseResult{Success: false, Errors: FieldErrors(err)}, nil
		}
		return ports.ParseResult{}, err
	}
	return ports.ParseResult{Success: true, Data: out}, nil
}
