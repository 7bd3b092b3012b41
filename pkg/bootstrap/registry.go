package bootstrap

import (
	"reflect"
	"sync"

	"github.com/techquest-tech/di-bootstrap/pkg/di"
)

var registryType = reflect.TypeFor[*Registry]()

// Registry records which bootstrappers were already applied to one
// collection. It is stored in that collection as a singleton instance.
type Registry struct {
	mu        sync.Mutex
	processed map[reflect.Type]struct{}
}

func NewRegistry() *Registry {
	return &Registry{processed: make(map[reflect.Type]struct{})}
}

// TryAdd records bootstrapperType and reports whether it was new.
func (r *Registry) TryAdd(bootstrapperType reflect.Type) (bool, error) {
	if bootstrapperType == nil {
		return false, di.NullArgument("bootstrapperType")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.processed[bootstrapperType]; ok {
		return false, nil
	}
	r.processed[bootstrapperType] = struct{}{}
	return true, nil
}

func (r *Registry) Contains(bootstrapperType reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.processed[bootstrapperType]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.processed)
}
