package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/flowgrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

const helloProgram = `
node "print" "hello" {
  message = "hello grid"
}

node "exitReached" "done" {}

edge {
  from = hello.flow
  to   = done.flow
}
`

const divideProgram = `
node "math" "div" {
  operation = "divide"
  a         = 1
  b         = 0
}

node "print" "show" {}

edge {
  from = div.result
  to   = show.value
}
`

// writeProgram writes src to a temporary .hcl file and returns its path.
func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// setupAppTest creates an app that logs at debug level into the returned buffer.
func setupAppTest(t *testing.T, cfg Config) (*App, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &testutil.SafeBuffer{}
	testutil.DumpOnCleanup(t, out)
	return NewApp(out, validated), out
}
