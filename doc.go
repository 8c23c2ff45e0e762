/*
Package formpath is a declarative engine for multi-step forms.

A flow is a directed graph of steps. Each step carries a schema that
validates its data and a transition that names the next step, either
statically or as a function of the data collected so far. From a
definition and the accumulated data, formpath derives the current path,
drives navigation (Next, Back, GoTo), tracks completion, invalidates
answers stranded by a branch change, and persists progress through a
pluggable key-value store with versioning and TTL expiry.

Definitions can be built with domain.NewFlow, the fluent builder in
pkg/dsl, or loaded from YAML via pkg/flowfile. Storage backends live
under pkg/adapters; any ports.Store implementation works.

Basic usage:

	def, err := formpath.NewFlow("signup", "account", steps)
	if err != nil { ... }

	flow, err := formpath.New(def,
		formpath.WithPersistence(redisStore),
		formpath.WithAutoPersist(true),
	)
	if err != nil { ... }

	if _, err := flow.Hydrate(ctx); err != nil { ... }
	advanced, err := flow.Next(ctx, map[string]any{"email": "a@b.c"})
*/
package formpath
