// Package testutil provides the shared harness for workspace-level tests:
// it writes HCL workspace files to a temporary directory, boots the app
// against them with test hook modules, and captures log output.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cortexmark/cortexmark/internal/app"
	"github.com/cortexmark/cortexmark/internal/hcladapter"
	"github.com/cortexmark/cortexmark/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a workspace test boot.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	SaveDir   string
	CacheDir  string
}

// RunWorkspaceTest writes the given HCL files to a temporary workspace,
// boots the application against them with the provided hook modules, and
// returns the result. Startup errors land in the result rather than failing
// the test, so negative cases can assert on them.
func RunWorkspaceTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "config")
	cacheDir := filepath.Join(tmpDir, "cache")
	saveDir := filepath.Join(tmpDir, "save")
	for _, dir := range []string{configDir, cacheDir, saveDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	for name, content := range files {
		filePath := filepath.Join(configDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	appConfig := &app.Config{
		ConfigPath: configDir,
		CachePath:  cacheDir,
		SavePath:   saveDir,
		User:       "tester",
		LogLevel:   "debug",
		LogFormat:  "text",
	}

	logBuffer := &SafeBuffer{}
	testApp, err := app.New(logBuffer, appConfig, hcladapter.NewLoader(), modules...)

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       err,
		App:       testApp,
		SaveDir:   saveDir,
		CacheDir:  cacheDir,
	}
}
