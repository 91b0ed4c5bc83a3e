package predictor

import "fmt"

// Constructor builds a Predictor from a backend config.
type Constructor func(cfg Config) (Predictor, error)

var registry = map[string]Constructor{}

// Register adds a backend constructor under the given name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the constructor for the given backend name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("predictor: unknown backend %q", name)
	}
	return ctor, nil
}

// Backends returns the names of all registered backends.
func Backends() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
