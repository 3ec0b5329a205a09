// Package ports defines the narrow interfaces through which the espalier
// core talks to its collaborators: state persistence, distributed locking,
// and prompt/localization lookup.
//
// Adapters implement these interfaces (see pkg/adapters); the core depends
// only on the contracts, keeping the engine embeddable in any transport.
package ports
