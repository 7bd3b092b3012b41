package di

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Descriptor describes one registered service. Either Instance or Constructor
// is set. Instance is only allowed for singletons.
//
// Constructor is a function like func(a A, b B) X or func(a A, b B) (X, error)
// where X is assignable to ServiceType. Parameters are resolved from the
// provider at construction time.
type Descriptor struct {
	ServiceType reflect.Type
	Lifetime    Lifetime
	Instance    any
	Constructor any
}

// Kind reports how the service is produced, "instance" or "constructor".
func (d Descriptor) Kind() string {
	if d.Constructor != nil {
		return "constructor"
	}
	return "instance"
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%v (%s, %s)", d.ServiceType, d.Lifetime, d.Kind())
}

func (d Descriptor) validate() error {
	if d.ServiceType == nil {
		return NullArgument("serviceType")
	}
	if !d.Lifetime.valid() {
		return InvalidArgument("lifetime", "unknown lifetime %s for %v", d.Lifetime, d.ServiceType)
	}

	switch {
	case d.Instance != nil && d.Constructor != nil:
		return InvalidArgument("descriptor", "%v has both an instance and a constructor", d.ServiceType)
	case d.Constructor != nil:
		return validateConstructor(d.ServiceType, d.Constructor)
	case d.Lifetime != Singleton:
		return InvalidArgument("descriptor", "%v: only singletons can be registered as an instance", d.ServiceType)
	case d.Instance == nil:
		// a nil instance is allowed for interface and pointer types
		switch d.ServiceType.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return nil
		}
		return InvalidArgument("instance", "nil instance for %v", d.ServiceType)
	}

	if it := reflect.TypeOf(d.Instance); !it.AssignableTo(d.ServiceType) {
		return InvalidArgument("instance", "%v is not assignable to %v", it, d.ServiceType)
	}
	return nil
}

func validateConstructor(serviceType reflect.Type, ctor any) error {
	ct := reflect.TypeOf(ctor)
	if ct.Kind() != reflect.Func {
		return InvalidArgument("constructor", "constructor for %v must be a function, got %v", serviceType, ct)
	}
	if ct.IsVariadic() {
		return InvalidArgument("constructor", "variadic constructor %v is not supported", ct)
	}

	switch ct.NumOut() {
	case 1:
	case 2:
		if ct.Out(1) != errorType {
			return InvalidArgument("constructor", "second result of %v must be error", ct)
		}
	default:
		return InvalidArgument("constructor", "constructor %v must return the service and an optional error", ct)
	}

	if !ct.Out(0).AssignableTo(serviceType) {
		return InvalidArgument("constructor", "%v is not assignable to %v", ct.Out(0), serviceType)
	}
	return nil
}
