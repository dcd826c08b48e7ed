// Package registry provides a global registry of rule variants.
// Variants register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
)

// VariantInfo contains metadata about a registered variant.
type VariantInfo struct {
	ID    string
	Title string
	Rules battleship.Rules
}

// Factory is a function that builds the rules of a variant.
// It is called on every Create so callers get their own fleet slice.
type Factory func() battleship.Rules

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a variant to the registry.
// Typically called from an init() function.
// Panics if a variant with the same ID is already registered or its rules
// do not validate.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: variant %q already registered", id))
	}
	if err := f().Validate(); err != nil {
		panic(fmt.Sprintf("registry: variant %q: %v", id, err))
	}

	factories[id] = f
	titles[id] = title
}

// List returns information about all registered variants, sorted by ID.
func List() []VariantInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]VariantInfo, 0, len(factories))
	for id, f := range factories {
		result = append(result, VariantInfo{
			ID:    id,
			Title: titles[id],
			Rules: f(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create builds the rules of a variant by its ID.
// Returns an error if the variant ID is not registered.
func Create(id string) (battleship.Rules, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return battleship.Rules{}, fmt.Errorf("registry: unknown variant %q", id)
	}

	return f(), nil
}

// Title returns the display title of a variant, or the ID if unknown.
func Title(id string) string {
	mu.RLock()
	defer mu.RUnlock()

	if t, ok := titles[id]; ok {
		return t
	}
	return id
}

// Exists checks if a variant with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
