// Package schema is the built-in validator for step data: a map of field
// names to field types, validated as a unit. It implements ports.Validator
// so flows can mix it freely with external validation capabilities.
//
// The package also ships asynchronous wrappers (Debounce, Retry,
// Abortable) for live field-level checks in the surrounding UI.
package schema
