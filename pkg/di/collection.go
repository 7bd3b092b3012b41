package di

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ServiceCollection is a mutable list of service descriptors. It is turned
// into a Provider with Build.
type ServiceCollection struct {
	mu          sync.RWMutex
	id          string
	descriptors []Descriptor
}

func NewCollection() *ServiceCollection {
	return &ServiceCollection{
		id:          uuid.NewString(),
		descriptors: make([]Descriptor, 0),
	}
}

// ID identifies the collection in logs and events.
func (s *ServiceCollection) ID() string {
	return s.id
}

func (s *ServiceCollection) Add(d Descriptor) error {
	if s == nil {
		return NullArgument("services")
	}
	if err := d.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.descriptors = append(s.descriptors, d)
	s.mu.Unlock()

	zap.L().Debug("service registered",
		zap.String("collection", s.id),
		zap.Stringer("service", d.ServiceType),
		zap.Stringer("lifetime", d.Lifetime),
	)
	return nil
}

// TryAdd adds d only if nothing is registered for its service type yet.
func (s *ServiceCollection) TryAdd(d Descriptor) (bool, error) {
	if s == nil {
		return false, NullArgument("services")
	}
	if err := d.validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if lo.ContainsBy(s.descriptors, func(item Descriptor) bool {
		return item.ServiceType == d.ServiceType
	}) {
		return false, nil
	}
	s.descriptors = append(s.descriptors, d)
	return true, nil
}

// Descriptors returns a snapshot in registration order.
func (s *ServiceCollection) Descriptors() []Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Descriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out
}

func (s *ServiceCollection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.descriptors)
}

func (s *ServiceCollection) Contains(serviceType reflect.Type) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.ContainsBy(s.descriptors, func(item Descriptor) bool {
		return item.ServiceType == serviceType
	})
}

// AddSingleton registers constructor as the singleton producer of T.
func AddSingleton[T any](s *ServiceCollection, constructor any) error {
	if s == nil {
		return NullArgument("services")
	}
	if constructor == nil {
		return NullArgument("constructor")
	}
	return s.Add(Descriptor{
		ServiceType: reflect.TypeFor[T](),
		Lifetime:    Singleton,
		Constructor: constructor,
	})
}

// AddTransient registers constructor to produce a new T on each resolution.
func AddTransient[T any](s *ServiceCollection, constructor any) error {
	if s == nil {
		return NullArgument("services")
	}
	if constructor == nil {
		return NullArgument("constructor")
	}
	return s.Add(Descriptor{
		ServiceType: reflect.TypeFor[T](),
		Lifetime:    Transient,
		Constructor: constructor,
	})
}

// AddInstance registers an already built singleton.
func AddInstance[T any](s *ServiceCollection, instance T) error {
	return s.Add(Descriptor{
		ServiceType: reflect.TypeFor[T](),
		Lifetime:    Singleton,
		Instance:    instance,
	})
}
