package bootstrap

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/samber/lo"
	"github.com/techquest-tech/di-bootstrap/pkg/di"
	"go.uber.org/zap"
)

var servicesBootstrapperType = reflect.TypeFor[ServicesBootstrapper]()

// Dispatcher runs bootstrappers against collections, once per collection and
// bootstrapper type. It remembers the registry of the last collection it saw;
// any other collection is looked up through its descriptors, so the result
// never depends on which collection was used last.
type Dispatcher struct {
	mu           sync.Mutex
	lastServices *di.ServiceCollection
	lastRegistry *Registry

	logger  *zap.Logger
	bus     EventBus.Bus
	catalog *Catalog
}

type Option func(*Dispatcher)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithBus publishes EventBootstrapped on bus after each bootstrapper ran.
func WithBus(bus EventBus.Bus) Option {
	return func(d *Dispatcher) {
		d.bus = bus
	}
}

func WithCatalog(catalog *Catalog) Option {
	return func(d *Dispatcher) {
		d.catalog = catalog
	}
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) log() *zap.Logger {
	if d.logger != nil {
		return d.logger
	}
	return zap.L()
}

// Bootstrap applies the bootstrapper of type servicesBootstrapper to services
// unless it was already applied. A pointer type is treated as its element
// type.
func (d *Dispatcher) Bootstrap(services *di.ServiceCollection, servicesBootstrapper reflect.Type) error {
	if services == nil {
		return di.NullArgument("services")
	}
	if servicesBootstrapper == nil {
		return di.NullArgument("servicesBootstrapper")
	}

	identity := identityOf(servicesBootstrapper)
	if !d.constructible(identity) {
		return di.InvalidArgument("servicesBootstrapper", "%v does not implement bootstrap.ServicesBootstrapper", servicesBootstrapper)
	}

	return d.dispatch(services, identity, func() ServicesBootstrapper {
		return d.construct(identity)
	})
}

// BootstrapNamed applies the catalog entries called names, in order. Nothing
// is applied when a name is unknown.
func (d *Dispatcher) BootstrapNamed(services *di.ServiceCollection, names ...string) error {
	if services == nil {
		return di.NullArgument("services")
	}
	if d.catalog == nil {
		return &di.InvalidOperationError{Message: "dispatcher has no bootstrapper catalog"}
	}

	unknown := lo.Filter(names, func(name string, _ int) bool {
		_, ok := d.catalog.Lookup(name)
		return !ok
	})
	if len(unknown) > 0 {
		return di.InvalidArgument("names", "unknown bootstrapper(s): %s", strings.Join(unknown, ", "))
	}

	for _, name := range names {
		t, _ := d.catalog.Lookup(name)
		if err := d.Bootstrap(services, t); err != nil {
			return err
		}
	}
	return nil
}

// BootstrapWith is the generic form of Dispatcher.Bootstrap. A catalog
// factory registered for T is preferred over new(T). A nil dispatcher behaves
// like a fresh one.
func BootstrapWith[T any, PT interface {
	*T
	ServicesBootstrapper
}](d *Dispatcher, services *di.ServiceCollection) error {
	if services == nil {
		return di.NullArgument("services")
	}
	if d == nil {
		d = NewDispatcher()
	}

	identity := reflect.TypeFor[T]()
	return d.dispatch(services, identity, func() ServicesBootstrapper {
		if f, ok := d.catalog.factory(identity); ok {
			return f()
		}
		return PT(new(T))
	})
}

// Bootstrap applies servicesBootstrapper to services with a dispatcher that
// keeps no state between calls.
func Bootstrap(services *di.ServiceCollection, servicesBootstrapper reflect.Type) error {
	return NewDispatcher().Bootstrap(services, servicesBootstrapper)
}

// BootstrapOf applies T to services. It is safe to call from inside another
// bootstrapper to pull in a dependency.
func BootstrapOf[T any, PT interface {
	*T
	ServicesBootstrapper
}](services *di.ServiceCollection) error {
	return BootstrapWith[T, PT](NewDispatcher(), services)
}

// dispatch builds and runs a bootstrapper unless identity was already applied
// to services. Identity is recorded only once a bootstrapper was built, so a
// failed build is reported again on the next call.
func (d *Dispatcher) dispatch(services *di.ServiceCollection, identity reflect.Type, build func() ServicesBootstrapper) error {
	registry, err := d.registry(services)
	if err != nil {
		return err
	}
	if registry.Contains(identity) {
		d.log().Debug("bootstrapper already applied",
			zap.String("collection", services.ID()),
			zap.Stringer("bootstrapper", identity),
		)
		return nil
	}

	b := build()
	if b == nil {
		return di.InvalidArgument("servicesBootstrapper", "factory for %v returned nil", identity)
	}
	added, err := registry.TryAdd(identity)
	if err != nil || !added {
		return err
	}
	return d.run(services, identity, b)
}

func (d *Dispatcher) run(services *di.ServiceCollection, identity reflect.Type, b ServicesBootstrapper) error {
	d.log().Debug("bootstrapping services",
		zap.String("collection", services.ID()),
		zap.Stringer("bootstrapper", identity),
	)
	if err := b.Bootstrap(services); err != nil {
		return fmt.Errorf("bootstrap %v failed: %w", identity, err)
	}
	if d.bus != nil {
		d.bus.Publish(EventBootstrapped, services.ID(), identity.String())
	}
	return nil
}

// registry returns the Registry stored in services, creating and registering
// one when there is none.
func (d *Dispatcher) registry(services *di.ServiceCollection) (*Registry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if services == d.lastServices && d.lastRegistry != nil {
		return d.lastRegistry, nil
	}

	registry, found := findRegistry(services)
	if !found {
		registry = NewRegistry()
		added, err := services.TryAdd(di.Descriptor{
			ServiceType: registryType,
			Lifetime:    di.Singleton,
			Instance:    registry,
		})
		if err != nil {
			return nil, err
		}
		if !added {
			if registry, found = findRegistry(services); !found {
				return nil, &di.InvalidOperationError{
					Message: fmt.Sprintf("%v is registered but not as a singleton instance", registryType),
				}
			}
		}
	}

	d.lastServices, d.lastRegistry = services, registry
	return registry, nil
}

func findRegistry(services *di.ServiceCollection) (*Registry, bool) {
	descriptor, found := lo.Find(services.Descriptors(), func(item di.Descriptor) bool {
		if item.Lifetime != di.Singleton || item.ServiceType != registryType {
			return false
		}
		r, ok := item.Instance.(*Registry)
		return ok && r != nil
	})
	if !found {
		return nil, false
	}
	return descriptor.Instance.(*Registry), true
}

func (d *Dispatcher) constructible(identity reflect.Type) bool {
	if _, ok := d.catalog.factory(identity); ok {
		return true
	}
	return identity.Kind() != reflect.Interface && reflect.PointerTo(identity).Implements(servicesBootstrapperType)
}

func (d *Dispatcher) construct(identity reflect.Type) ServicesBootstrapper {
	if f, ok := d.catalog.factory(identity); ok {
		return f()
	}
	return reflect.New(identity).Interface().(ServicesBootstrapper)
}

func identityOf(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
