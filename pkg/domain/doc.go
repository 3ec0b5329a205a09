// Package domain contains the core value types of the espalier dialog
// engine: normalized inputs, system acts, turn results, per-control state,
// the rendered response model, and the typed errors shared across layers.
//
// Types here carry no behavior beyond their own invariants, so every layer
// (controls, runtime, adapters) can depend on them without cycles.
package domain
