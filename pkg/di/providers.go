package di

import (
	"github.com/samber/do/v2"

	"github.com/funkpd/autolocal/pkg/svc/provisioner/site"
	"github.com/funkpd/autolocal/pkg/utils/timer"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root command
// and tests. It registers default implementations for the timer and the site
// provisioner factory.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideProvisionerFactory,
	)
}

// provideTimer registers the timer dependency with the injector.
func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// provideProvisionerFactory registers the site provisioner factory dependency.
func provideProvisionerFactory(i Injector) error {
	do.Provide(i, func(Injector) (site.Factory, error) {
		return site.DefaultFactory{}, nil
	})

	return nil
}
