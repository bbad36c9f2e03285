package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openlawindex/harvester/internal/app"
)

const testRegistry = `
jurisdictions:
  - name: Testland
    slug: testland
    abbrev: TL
    circuit_slug: eleventh-circuit
    code_titles: {first: 1, last: 1}
    admin_titles: {first: 1, last: 1}
    case_years: {first: 2020, last: 2020}
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	registryPath := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(registryPath, []byte(testRegistry), 0o600))

	configYAML := `
harvest:
  registry_path: ` + registryPath + `
store:
  dir: ` + filepath.Join(dir, "corpus") + `
logging:
  development: true
`
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o600))
	return cfgPath
}

// The app built in PersistentPreRunE must be torn down even when the
// subcommand fails, which cobra's PersistentPostRun would skip.
func TestCloserTearsDownAppAfterFailedRun(t *testing.T) {
	builds := 0
	orig := newApp
	newApp = func(path string) (*app.App, error) {
		builds++
		return orig(path)
	}
	defer func() { newApp = orig }()

	root, closeApp := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"harvest", "no-such-place", "--config", writeTestConfig(t)})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown jurisdiction")
	require.Equal(t, 1, builds)

	// First call closes the app built above; the second must be a no-op.
	closeApp()
	closeApp()
}

func TestCloserIsNoOpWhenStartupFails(t *testing.T) {
	root, closeApp := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"harvest", "testland", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)

	// No app was built; closing must not panic.
	closeApp()
}
