package driven

// ConfigStore is a flat view of the settings file. Keys are dotted paths
// ("chat.top_k") and values keep whatever type the store decoded, so
// callers coerce them.
type ConfigStore interface {
	Get(key string) (any, bool)

	// Update merges values into the store and persists them in one write.
	Update(values map[string]any) error

	// Path locates the backing file, for display.
	Path() string
}
