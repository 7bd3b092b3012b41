// Package bootstrap applies units of service registration to a
// di.ServiceCollection at most once per collection, however often and from
// however many places they are requested.
package bootstrap

import "github.com/techquest-tech/di-bootstrap/pkg/di"

// ServicesBootstrapper registers a related set of services. Implementations
// must be constructible from their zero value.
type ServicesBootstrapper interface {
	Bootstrap(services *di.ServiceCollection) error
}

const (
	EventBootstrapped = "event.di.bootstrapped" // args: collection id, bootstrapper type name
)
