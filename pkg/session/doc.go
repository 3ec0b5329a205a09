// Package session coordinates concurrent access to persisted dialog state.
// Each turn runs against an exclusively owned state blob: the manager holds
// an in-process lock per session id, and optionally a distributed lock when
// multiple replicas share one store.
package session
