package bootstrap

import (
	"reflect"
	"slices"
	"sync"

	"github.com/samber/lo"
	"github.com/techquest-tech/di-bootstrap/pkg/di"
)

// Catalog maps names to bootstrapper types and keeps a constructor per type,
// so bootstrappers can be picked from configuration.
type Catalog struct {
	mu        sync.RWMutex
	names     map[string]reflect.Type
	factories map[reflect.Type]func() ServicesBootstrapper
}

func NewCatalog() *Catalog {
	return &Catalog{
		names:     make(map[string]reflect.Type),
		factories: make(map[reflect.Type]func() ServicesBootstrapper),
	}
}

// Add registers factory under name. The factory is also used by the
// dispatcher instead of reflection whenever bootstrapperType is requested.
func (c *Catalog) Add(name string, bootstrapperType reflect.Type, factory func() ServicesBootstrapper) error {
	if name == "" {
		return di.NullArgument("name")
	}
	if bootstrapperType == nil {
		return di.NullArgument("bootstrapperType")
	}
	if factory == nil {
		return di.NullArgument("factory")
	}
	bootstrapperType = identityOf(bootstrapperType)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.names[name]; ok && existing != bootstrapperType {
		return di.InvalidArgument("name", "%s is already registered for %v", name, existing)
	}
	c.names[name] = bootstrapperType
	c.factories[bootstrapperType] = factory
	return nil
}

// Register adds T under name, constructed from its zero value.
func Register[T any, PT interface {
	*T
	ServicesBootstrapper
}](c *Catalog, name string) error {
	if c == nil {
		return di.NullArgument("catalog")
	}
	return c.Add(name, reflect.TypeFor[T](), func() ServicesBootstrapper {
		return PT(new(T))
	})
}

func (c *Catalog) Lookup(name string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.names[name]
	return t, ok
}

// Names returns the registered names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	names := lo.Keys(c.names)
	c.mu.RUnlock()
	slices.Sort(names)
	return names
}

func (c *Catalog) factory(bootstrapperType reflect.Type) (func() ServicesBootstrapper, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[bootstrapperType]
	return f, ok
}
