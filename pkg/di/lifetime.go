package di

import "fmt"

type Lifetime uint8

const (
	// Singleton services are created once per provider and shared.
	Singleton Lifetime = iota + 1
	// Transient services are created on every resolution.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifetime(%d)", uint8(l))
	}
}

func (l Lifetime) valid() bool {
	return l == Singleton || l == Transient
}
