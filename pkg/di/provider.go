package di

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

var providerType = reflect.TypeFor[*Provider]()

// Provider resolves services from a built collection. Singletons are cached
// in a dig container; transients are constructed on every call and never
// cached, even when a singleton depends on them.
//
// A Provider is meant to be used from one goroutine at a time, like the
// collection it was built from during startup.
type Provider struct {
	id        string
	container *dig.Container
	services  map[reflect.Type]Descriptor
	inflight  map[reflect.Type]bool
}

// Build snapshots the collection into a Provider. Later registrations on the
// collection do not affect the provider. When a service type is registered
// more than once, the last registration wins.
func (s *ServiceCollection) Build() (*Provider, error) {
	if s == nil {
		return nil, NullArgument("services")
	}

	p := &Provider{
		id:        s.id,
		container: dig.New(),
		services:  make(map[reflect.Type]Descriptor),
		inflight:  make(map[reflect.Type]bool),
	}
	for _, d := range s.Descriptors() {
		if d.ServiceType == providerType {
			return nil, InvalidArgument("services", "%v is provided by the container itself", providerType)
		}
		p.services[d.ServiceType] = d
	}

	if err := p.container.Provide(func() *Provider { return p }); err != nil {
		return nil, err
	}
	for t, d := range p.services {
		if d.Lifetime != Singleton {
			continue
		}
		if err := p.container.Provide(p.digConstructor(d)); err != nil {
			return nil, fmt.Errorf("register %v failed: %w", t, err)
		}
	}

	zap.L().Debug("service provider built", zap.String("collection", p.id), zap.Int("services", len(p.services)))
	return p, nil
}

func (p *Provider) ID() string {
	return p.id
}

// Resolve returns an instance of serviceType.
func (p *Provider) Resolve(serviceType reflect.Type) (any, error) {
	if serviceType == nil {
		return nil, NullArgument("serviceType")
	}
	return p.resolve(serviceType, nil)
}

// Invoke calls fn with its parameters resolved from the provider. If fn
// returns an error as its last result, Invoke returns it.
func (p *Provider) Invoke(fn any) error {
	if fn == nil {
		return NullArgument("fn")
	}
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.IsVariadic() {
		return InvalidArgument("fn", "can't invoke %v", ft)
	}

	args, err := p.arguments(ft, nil)
	if err != nil {
		return err
	}
	out := fv.Call(args)
	if n := len(out); n > 0 && ft.Out(n-1) == errorType && !out[n-1].IsNil() {
		return out[n-1].Interface().(error)
	}
	return nil
}

func (p *Provider) resolve(t reflect.Type, path []reflect.Type) (any, error) {
	if t == providerType {
		return p, nil
	}
	d, ok := p.services[t]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, t)
	}
	if d.Lifetime == Singleton {
		return p.singleton(t)
	}

	if lo.Contains(path, t) {
		return nil, fmt.Errorf("%w: %s", ErrCircularDependency, formatPath(append(path, t)))
	}
	return p.construct(d, append(path[:len(path):len(path)], t))
}

func (p *Provider) singleton(t reflect.Type) (any, error) {
	if p.inflight[t] {
		return nil, fmt.Errorf("%w: %v depends on itself", ErrCircularDependency, t)
	}
	p.inflight[t] = true
	defer delete(p.inflight, t)

	var out any
	receiver := reflect.MakeFunc(reflect.FuncOf([]reflect.Type{t}, nil, false), func(args []reflect.Value) []reflect.Value {
		out = args[0].Interface()
		return nil
	})
	if err := p.container.Invoke(receiver.Interface()); err != nil {
		return nil, fmt.Errorf("resolve %v failed: %w", t, dig.RootCause(err))
	}
	return out, nil
}

func (p *Provider) construct(d Descriptor, path []reflect.Type) (any, error) {
	ctor := reflect.ValueOf(d.Constructor)
	args, err := p.arguments(ctor.Type(), path)
	if err != nil {
		return nil, fmt.Errorf("construct %v failed: %w", d.ServiceType, err)
	}
	out := ctor.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func (p *Provider) arguments(ft reflect.Type, path []reflect.Type) ([]reflect.Value, error) {
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		in := ft.In(i)
		v, err := p.resolve(in, path)
		if err != nil {
			return nil, err
		}
		args[i] = valueOf(v, in)
	}
	return args, nil
}

// digConstructor adapts a singleton descriptor to a dig constructor returning
// exactly the service type. Parameters are resolved by the provider, not by
// dig, so transient dependencies stay transient and missing ones report
// ErrServiceNotFound.
func (p *Provider) digConstructor(d Descriptor) any {
	t := d.ServiceType
	ft := reflect.FuncOf(nil, []reflect.Type{t, errorType}, false)

	if d.Constructor == nil {
		instance := valueOf(d.Instance, t)
		return reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
			return results(t, instance, nil)
		}).Interface()
	}
	return reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
		v, err := p.construct(d, nil)
		return results(t, valueOf(v, t), err)
	}).Interface()
}

func results(t reflect.Type, v reflect.Value, err error) []reflect.Value {
	ret := reflect.New(t).Elem()
	if err != nil {
		return []reflect.Value{ret, reflect.ValueOf(&err).Elem()}
	}
	if v.IsValid() {
		ret.Set(v)
	}
	return []reflect.Value{ret, reflect.Zero(errorType)}
}

func valueOf(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}

func formatPath(path []reflect.Type) string {
	return strings.Join(lo.Map(path, func(t reflect.Type, _ int) string {
		return t.String()
	}), " -> ")
}

// Resolve returns the registered T.
func Resolve[T any](p *Provider) (T, error) {
	var zero T
	if p == nil {
		return zero, NullArgument("provider")
	}
	v, err := p.resolve(reflect.TypeFor[T](), nil)
	if err != nil {
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

// MustResolve is Resolve that panics on failure. Use it in startup code only.
func MustResolve[T any](p *Provider) T {
	t, err := Resolve[T](p)
	if err != nil {
		zap.L().Error("resolve service failed.", zap.Error(err))
		panic(err)
	}
	return t
}
