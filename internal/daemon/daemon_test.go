package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preesm/spider2/internal/control"
)

func writeTestConfig(t *testing.T, socket string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	contents := `
spider2:
  control:
    socket: ` + socket + `
    pid_file: ""
  run:
    graph_file: chain
    queue_size: 16
  metrics:
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestNewBuildsChainScenario(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "spider2.sock")
	path := writeTestConfig(t, socket)

	d, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "chain", d.scenario.Name)
	assert.NotNil(t, d.driver)
}

func TestDaemonStartRunIterationStop(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "spider2.sock")
	path := writeTestConfig(t, socket)

	d, err := New(path)
	require.NoError(t, err)
	require.NoError(t, d.Start())
	defer d.Stop()

	// give the control server a moment to bind and the iteration loop to
	// complete at least one pass.
	time.Sleep(100 * time.Millisecond)

	client := control.NewClient(socket, 2*time.Second)
	resp, err := client.Status(context.Background())
	require.NoError(t, err)
	require.Nil(t, resp.Error)

	d.Stop()
	assert.False(t, d.running.IsSet())
}
