package formpath

// Version is the library version, overridable at build time with
// -ldflags "-X github.com/nmbl-labs/formpath.Version=...".
var Version = "0.1.0"
