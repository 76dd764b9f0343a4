package similarity

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Func{
		Manhattan.name: Manhattan,
		Euclidean.name: Euclidean,
		Table.name:     Table,
		Edit.name:      Edit,
	}
)

// Register makes f available to Lookup under its name (case-insensitive).
func Register(f Func) error {
	if err := f.Validate(); err != nil {
		return err
	}
	key := strings.ToLower(f.name)

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, f.name)
	}
	registry[key] = f
	return nil
}

// Lookup returns the function registered under name (case-insensitive).
func Lookup(name string) (Func, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Func{}, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return f, nil
}

// Names returns the sorted names of all registered functions.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}
