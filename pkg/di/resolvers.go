package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/funkpd/autolocal/pkg/svc/provisioner/site"
	"github.com/funkpd/autolocal/pkg/utils/timer"
)

// Dependency resolvers.

// ResolveTimer retrieves the timer dependency from the injector with
// consistent error handling.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	tmr, err := do.Invoke[timer.Timer](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve timer dependency: %w", err)
	}

	return tmr, nil
}

// ResolveProvisionerFactory retrieves the site provisioner factory dependency
// from the injector with consistent error handling.
func ResolveProvisionerFactory(injector Injector) (site.Factory, error) {
	factory, err := do.Invoke[site.Factory](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve provisioner factory dependency: %w", err)
	}

	return factory, nil
}
