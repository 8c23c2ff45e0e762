// Package domain contains the core model of a formpath flow: step and
// flow definitions, the tagged transition variants, the runtime flow
// state, and the structural validation that runs at construction time.
//
// Types here are plain values. They hold no behavior beyond resolution
// and validation; the state machine that mutates FlowState lives in
// internal/runtime.
package domain
