package bootstrap_test

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techquest-tech/di-bootstrap/pkg/bootstrap"
	"github.com/techquest-tech/di-bootstrap/pkg/di"
)

var bootstrapCalls atomic.Int32

type countingBootstrapper struct{}

func (countingBootstrapper) Bootstrap(services *di.ServiceCollection) error {
	bootstrapCalls.Add(1)
	return nil
}

type notABootstrapper struct{}

var dependencyCalls atomic.Int32

type dependencyBootstrapper struct{}

func (*dependencyBootstrapper) Bootstrap(services *di.ServiceCollection) error {
	dependencyCalls.Add(1)
	return di.AddInstance(services, "dependency")
}

type dependentBootstrapper struct{}

func (*dependentBootstrapper) Bootstrap(services *di.ServiceCollection) error {
	return bootstrap.BootstrapOf[dependencyBootstrapper](services)
}

type failingBootstrapper struct{}

var errFailing = errors.New("failing bootstrapper")

func (failingBootstrapper) Bootstrap(*di.ServiceCollection) error {
	return errFailing
}

var countingType = reflect.TypeFor[countingBootstrapper]()

func reset() {
	bootstrapCalls.Store(0)
	dependencyCalls.Store(0)
}

func TestBootstrapWithTypeNilServices(t *testing.T) {
	err := bootstrap.Bootstrap(nil, countingType)

	var argErr *di.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "services", argErr.Param)
	assert.ErrorIs(t, err, di.ErrArgumentNull)
}

func TestBootstrapWithTypeNilBootstrapperType(t *testing.T) {
	err := bootstrap.Bootstrap(di.NewCollection(), nil)

	var argErr *di.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "servicesBootstrapper", argErr.Param)
	assert.ErrorIs(t, err, di.ErrArgumentNull)
}

func TestBootstrapWithTypeCallsBootstrapper(t *testing.T) {
	reset()

	require.NoError(t, bootstrap.Bootstrap(di.NewCollection(), countingType))

	assert.EqualValues(t, 1, bootstrapCalls.Load())
}

func TestBootstrapWithTypeCalledTwiceCallsOnce(t *testing.T) {
	reset()
	services := di.NewCollection()

	require.NoError(t, bootstrap.Bootstrap(services, countingType))
	require.NoError(t, bootstrap.Bootstrap(services, countingType))

	assert.EqualValues(t, 1, bootstrapCalls.Load())
}

func TestBootstrapWithTypeNotImplementing(t *testing.T) {
	reset()
	services := di.NewCollection()

	for _, typ := range []reflect.Type{
		reflect.TypeFor[notABootstrapper](),
		reflect.TypeFor[bootstrap.ServicesBootstrapper](),
		reflect.TypeFor[int](),
	} {
		err := bootstrap.Bootstrap(services, typ)

		var argErr *di.ArgumentError
		require.ErrorAs(t, err, &argErr)
		assert.Equal(t, "servicesBootstrapper", argErr.Param)
		assert.ErrorIs(t, err, di.ErrInvalidArgument)
		assert.Contains(t, err.Error(), typ.String())
	}
	assert.EqualValues(t, 0, bootstrapCalls.Load())
}

func TestGenericBootstrapNilServices(t *testing.T) {
	err := bootstrap.BootstrapOf[countingBootstrapper](nil)

	var argErr *di.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "services", argErr.Param)
}

func TestGenericBootstrapCallsBootstrapper(t *testing.T) {
	reset()

	require.NoError(t, bootstrap.BootstrapOf[countingBootstrapper](di.NewCollection()))

	assert.EqualValues(t, 1, bootstrapCalls.Load())
}

func TestGenericBootstrapCalledTwiceCallsOnce(t *testing.T) {
	reset()
	services := di.NewCollection()

	require.NoError(t, bootstrap.BootstrapOf[countingBootstrapper](services))
	require.NoError(t, bootstrap.BootstrapOf[countingBootstrapper](services))

	assert.EqualValues(t, 1, bootstrapCalls.Load())
}

func TestTypeAndGenericShareIdentity(t *testing.T) {
	reset()
	services := di.NewCollection()

	require.NoError(t, bootstrap.BootstrapOf[countingBootstrapper](services))
	require.NoError(t, bootstrap.Bootstrap(services, countingType))
	require.NoError(t, bootstrap.Bootstrap(services, reflect.TypeFor[*countingBootstrapper]()))

	assert.EqualValues(t, 1, bootstrapCalls.Load())
}

func TestTwoCollectionsCallTwice(t *testing.T) {
	reset()
	services1 := di.NewCollection()
	services2 := di.NewCollection()

	require.NoError(t, bootstrap.BootstrapOf[countingBootstrapper](services1))
	require.NoError(t, bootstrap.BootstrapOf[countingBootstrapper](services2))

	assert.EqualValues(t, 2, bootstrapCalls.Load())
}

func TestTwoCollectionsInterleavedCallOnlyTwice(t *testing.T) {
	reset()
	d := bootstrap.NewDispatcher()
	services1 := di.NewCollection()
	services2 := di.NewCollection()

	for i := 0; i < 3; i++ {
		require.NoError(t, bootstrap.BootstrapWith[countingBootstrapper](d, services1))
		require.NoError(t, d.Bootstrap(services2, countingType))
	}

	assert.EqualValues(t, 2, bootstrapCalls.Load())
}

func TestOtherServicesRegisteredFirst(t *testing.T) {
	reset()
	d := bootstrap.NewDispatcher()
	services1 := di.NewCollection()
	services2 := di.NewCollection()
	require.NoError(t, di.AddTransient[string](services1, func() string { return "Service" }))
	require.NoError(t, di.AddTransient[string](services2, func() string { return "Service" }))

	require.NoError(t, bootstrap.BootstrapWith[countingBootstrapper](d, services1))
	require.NoError(t, di.AddInstance(services1, 42))
	require.NoError(t, bootstrap.BootstrapWith[countingBootstrapper](d, services1))

	assert.EqualValues(t, 1, bootstrapCalls.Load())
}

func TestRegistryIsRegisteredOnce(t *testing.T) {
	services := di.NewCollection()

	require.NoError(t, bootstrap.BootstrapOf[countingBootstrapper](services))
	require.NoError(t, bootstrap.BootstrapOf[dependencyBootstrapper](services))

	registries := 0
	for _, d := range services.Descriptors() {
		if d.ServiceType == reflect.TypeFor[*bootstrap.Registry]() {
			registries++
			assert.Equal(t, di.Singleton, d.Lifetime)
			assert.Equal(t, 2, d.Instance.(*bootstrap.Registry).Len())
		}
	}
	assert.Equal(t, 1, registries)
}

func TestNestedBootstrap(t *testing.T) {
	reset()
	d := bootstrap.NewDispatcher()
	services := di.NewCollection()

	require.NoError(t, bootstrap.BootstrapWith[dependentBootstrapper](d, services))
	require.NoError(t, bootstrap.BootstrapWith[dependencyBootstrapper](d, services))

	assert.EqualValues(t, 1, dependencyCalls.Load())

	p, err := services.Build()
	require.NoError(t, err)
	assert.Equal(t, "dependency", di.MustResolve[string](p))
}

func TestFailingBootstrapperIsNotRetried(t *testing.T) {
	services := di.NewCollection()

	err := bootstrap.BootstrapOf[failingBootstrapper](services)
	assert.ErrorIs(t, err, errFailing)

	assert.NoError(t, bootstrap.BootstrapOf[failingBootstrapper](services))
}

func TestBootstrapPublishesEvent(t *testing.T) {
	bus := EventBus.New()
	var applied []string
	require.NoError(t, bus.Subscribe(bootstrap.EventBootstrapped, func(collection string, name string) {
		applied = append(applied, name)
	}))

	d := bootstrap.NewDispatcher(bootstrap.WithBus(bus))
	services := di.NewCollection()
	require.NoError(t, d.Bootstrap(services, countingType))
	require.NoError(t, d.Bootstrap(services, countingType))

	assert.Equal(t, []string{countingType.String()}, applied)
}

func TestNotImplementingRejectedOnEveryCall(t *testing.T) {
	d := bootstrap.NewDispatcher()
	services := di.NewCollection()
	typ := reflect.TypeFor[notABootstrapper]()
	require.NoError(t, bootstrap.BootstrapWith[countingBootstrapper](d, services))

	for i := 0; i < 2; i++ {
		err := d.Bootstrap(services, typ)

		var argErr *di.ArgumentError
		require.ErrorAs(t, err, &argErr)
		assert.Equal(t, "servicesBootstrapper", argErr.Param)
	}
	registry := di.MustResolve[*bootstrap.Registry](mustBuild(t, services))
	assert.False(t, registry.Contains(typ))
}

func TestRegistryRegisteredAsConstructor(t *testing.T) {
	reset()
	services := di.NewCollection()
	require.NoError(t, di.AddTransient[*bootstrap.Registry](services, bootstrap.NewRegistry))

	err := bootstrap.BootstrapOf[countingBootstrapper](services)

	assert.ErrorIs(t, err, di.ErrInvalidOperation)
	assert.EqualValues(t, 0, bootstrapCalls.Load())
}

func mustBuild(t *testing.T, services *di.ServiceCollection) *di.Provider {
	p, err := services.Build()
	require.NoError(t, err)
	return p
}
