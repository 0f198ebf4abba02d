package daemonproc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/ingestd/internal/control"
	"firestige.xyz/ingestd/internal/plugin"
)

func writeConfig(t *testing.T, socketPath, pidPath string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ingestd.yaml")
	contents := `
DeployName: dep1
TargetThreads: 1
Registry:
  endpoint: http://127.0.0.1:9/get-route-config
Control:
  socket: ` + socketPath + `
  pidFile: ` + pidPath + `
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestNewFailsOnMissingConfig(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"), plugin.NewRegistry())
	assert.Error(t, err)
}

func TestStartWritesPIDFileStopRemovesIt(t *testing.T) {
	tmp := t.TempDir()
	socketPath := filepath.Join(tmp, "ingestd.sock")
	pidPath := filepath.Join(tmp, "ingestd.pid")

	cfgPath := writeConfig(t, socketPath, pidPath)
	d, err := New(cfgPath, plugin.NewRegistry())
	require.NoError(t, err)

	require.NoError(t, d.Start())
	_, statErr := os.Stat(pidPath)
	assert.NoError(t, statErr)

	d.Stop()
	_, statErr = os.Stat(pidPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReloadRefreshesRouteTableWithoutError(t *testing.T) {
	tmp := t.TempDir()
	socketPath := filepath.Join(tmp, "ingestd.sock")
	pidPath := filepath.Join(tmp, "ingestd.pid")

	cfgPath := writeConfig(t, socketPath, pidPath)
	d, err := New(cfgPath, plugin.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, d.Start())
	defer d.Stop()

	assert.NoError(t, d.Reload())
}

func TestStatusOverControlSocketAfterStart(t *testing.T) {
	tmp := t.TempDir()
	socketPath := filepath.Join(tmp, "ingestd.sock")
	pidPath := filepath.Join(tmp, "ingestd.pid")

	cfgPath := writeConfig(t, socketPath, pidPath)
	d, err := New(cfgPath, plugin.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, d.Start())
	defer d.Stop()

	client := control.NewClient(socketPath, time.Second)
	deadline := time.Now().Add(2 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		_, lastErr = client.Status(context.Background())
		if lastErr == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.NoError(t, lastErr)
}
