// Package ports declares the capability interfaces the engine consumes:
// schema validation and key/value storage. Implementations live in
// pkg/schema and pkg/adapters; callers may bring their own.
package ports
