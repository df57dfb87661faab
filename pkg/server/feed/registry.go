package feed

import (
	"fmt"
	"sort"
	"sync"
)

// Feed implementations register a factory under "type.name" from their
// package init, so importing a feed package is what makes it available.
var (
	mu       sync.RWMutex
	registry = make(map[string]SourceFactory)
)

func registryKey(sourceType, name string) string {
	return sourceType + "." + name
}

// Register adds a source factory under the given "type.name" key. A later
// registration under the same key replaces the earlier one.
func Register(key string, factory SourceFactory) {
	mu.Lock()
	defer mu.Unlock()
	registry[key] = factory
}

// Create instantiates the registered source for the given type and name.
func Create(sourceType, name string, config map[string]interface{}) (Source, error) {
	mu.RLock()
	factory, ok := registry[registryKey(sourceType, name)]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, registryKey(sourceType, name))
	}
	return factory(config)
}

// List returns the registered source keys in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	keys := make([]string, 0, len(registry))
	for key := range registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
