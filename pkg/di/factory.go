package di

import (
	"fmt"
	"reflect"
)

// AddFuncFactory registers a singleton func() (T, error). Every call of the
// func resolves T from the provider at that time, so a transient T yields a
// new instance per call. When T can't be resolved the func returns an
// *InvalidOperationError.
func AddFuncFactory[T any](services *ServiceCollection) error {
	if services == nil {
		return NullArgument("services")
	}

	return AddSingleton[func() (T, error)](services, func(p *Provider) func() (T, error) {
		return func() (T, error) {
			t, err := Resolve[T](p)
			if err != nil {
				return t, &InvalidOperationError{
					Message: fmt.Sprintf("Unable to resolve service of type %v", reflect.TypeFor[T]()),
					Cause:   err,
				}
			}
			return t, nil
		}
	})
}
