package schema

// Schema maps field names to their expected types.
// Example: {"email": String(), "age": Int(), "tags": Slice(String())}.
type Schema map[string]Type

// ValidateMap checks data against the schema. Fields declared in the
// schema are required unless wrapped in Optional; extra fields in data
// are ignored. All failures are collected into one AggregateError.
func ValidateMap(s Schema, data map[string]any) error {
	if len(s) == 0 {
		// No schema fields = nothing to validate.
		return nil
	}

	var errs []error
	for field, fieldType := range s {
		value, exists := data[field]
		if !exists {
			if _, optional := fieldType.(*OptionalType); optional {
				continue
			}
			errs = append(errs, &ValidationError{
				Field:  field,
				Reason: "required",
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Field:  field,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateFields validates only the named fields, for live per-field
// checks while the user types. Fields absent from the schema fail.
func ValidateFields(s Schema, data map[string]any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	var errs []error
	for _, field := range fields {
		fieldType, declared := s[field]
		if !declared {
			errs = append(errs, &ValidationError{
				Field:  field,
				Reason: "not defined in schema",
			})
			continue
		}

		value, exists := data[field]
		if !exists {
			if _, optional := fieldType.(*OptionalType); optional {
				continue
			}
			errs = append(errs, &ValidationError{
				Field:  field,
				Reason: "required",
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Field:  field,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
