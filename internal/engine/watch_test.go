package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type watchRun struct {
	result *DiscoveryResult
	err    error
}

func TestWatch_RecompilesOnChange(t *testing.T) {
	dir := t.TempDir()
	users := writeFile(t, dir, "users.dbml", usersDoc)

	eng := newTestEngine(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan watchRun, 16)
	done := make(chan error, 1)
	go func() {
		done <- eng.Watch(ctx, 50*time.Millisecond, func(r *DiscoveryResult, err error) {
			runs <- watchRun{r, err}
		})
	}()

	next := func() watchRun {
		t.Helper()
		select {
		case run := <-runs:
			return run
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a discovery run")
			return watchRun{}
		}
	}

	initial := next()
	require.NoError(t, initial.err)
	assert.Equal(t, 1, initial.result.Total)
	assert.Equal(t, 1, initial.result.Changed)

	require.NoError(t, os.WriteFile(users, []byte(usersDoc+"\nTable audit {\n  id int\n}\n"), 0o644))
	// A write may surface as more than one event burst; wait for the final state
	for {
		run := next()
		require.NoError(t, run.err)
		if run.result.Stats().Tables == 2 {
			break
		}
	}
	drain(runs, 200*time.Millisecond)

	// Files that do not match the include glob are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# docs"), 0o644))
	select {
	case run := <-runs:
		t.Fatalf("unexpected run after non-schema change: %s", run.result.Summary())
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	eng, err := New(Config{SchemaDir: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	err = eng.Watch(context.Background(), time.Millisecond, func(*DiscoveryResult, error) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch schema dir")
}

// drain discards runs until none arrive for quiet.
func drain(runs <-chan watchRun, quiet time.Duration) {
	for {
		select {
		case <-runs:
		case <-time.After(quiet):
			return
		}
	}
}
