package envvar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funkpd/autolocal/pkg/utils/envvar"
)

func TestExpandReplacesSetVariable(t *testing.T) {
	t.Setenv("AUTOLOCAL_TEST_ROOT", "/srv/http")

	require.Equal(t, "/srv/http/demo.local", envvar.Expand("${AUTOLOCAL_TEST_ROOT}/demo.local"))
}

func TestExpandUnsetVariableBecomesEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/sites", envvar.Expand("${AUTOLOCAL_TEST_MISSING_VAR}/sites"))
}

func TestExpandDefaultValueSyntax(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/etc/hosts", envvar.Expand("${AUTOLOCAL_TEST_MISSING_VAR:-/etc/hosts}"))
}

func TestExpandSetVariableWinsOverDefault(t *testing.T) {
	t.Setenv("AUTOLOCAL_TEST_HOSTS", "/tmp/hosts")

	require.Equal(t, "/tmp/hosts", envvar.Expand("${AUTOLOCAL_TEST_HOSTS:-/etc/hosts}"))
}

func TestExpandPlainStringUntouched(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/srv/http", envvar.Expand("/srv/http"))
	require.Empty(t, envvar.Expand(""))
}

func TestExpandMultiplePlaceholders(t *testing.T) {
	t.Setenv("AUTOLOCAL_TEST_A", "a")
	t.Setenv("AUTOLOCAL_TEST_B", "b")

	require.Equal(t, "a/b", envvar.Expand("${AUTOLOCAL_TEST_A}/${AUTOLOCAL_TEST_B}"))
}
