package ports

// PromptSource resolves prompt fragments by key, typically backed by a
// localized bundle. Controls fall back to their configured literal prompts
// when a key is missing, so a partial bundle is fine.
type PromptSource interface {
	// Get returns the prompt for key, formatted with args. It returns ""
	// when the key is unknown.
	Get(key string, args ...any) string

	// Has reports whether the key exists in the source.
	Has(key string) bool
}
