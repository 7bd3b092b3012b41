package core

import (
	"github.com/asaskevich/EventBus"
	"github.com/techquest-tech/di-bootstrap/pkg/bootstrap"
)

var Bus = EventBus.New()

const (
	EventStarted      = "sys.started" // trigger when the provider is built.
	EventBootstrapped = bootstrap.EventBootstrapped
)

type SystenEvent func()

func OnServiceStarted(fn SystenEvent) {
	Bus.Subscribe(EventStarted, fn)
}

// OnBootstrapped is called with the collection id and the bootstrapper type
// name each time a bootstrapper is applied.
func OnBootstrapped(fn func(collection, bootstrapper string)) {
	Bus.Subscribe(EventBootstrapped, fn)
}

func OnEvent(topic string, fn SystenEvent) {
	Bus.Subscribe(topic, fn)
}
