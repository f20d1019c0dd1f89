package python_test

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/airdraw/internal/python"
)

func requirePython(t *testing.T) *python.Interpreter {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	return python.New("python3")
}

func TestRun(t *testing.T) {
	py := requirePython(t)

	out, err := py.Run(context.Background(),
		"import sys; print(sys.argv[1] + sys.argv[2])", "air", "draw",
	)
	require.NoError(t, err)
	assert.Equal(t, "airdraw\n", string(out))
}

func TestRunExitError(t *testing.T) {
	py := requirePython(t)

	_, err := py.Run(context.Background(),
		"import sys; sys.stderr.write('first\\nboom\\n'); sys.exit(3)",
	)
	exit, ok := err.(*python.ExitError)
	require.True(t, ok)
	assert.Equal(t, 3, exit.Code)
	assert.Equal(t, "exit status 3: boom", exit.Error())
}

func TestRunMissingInterpreter(t *testing.T) {
	py := python.New("airdraw-no-such-python")

	_, err := py.Run(context.Background(), "pass")
	assert.ErrorIs(t, err, python.ErrInterpreterNotFound)
}

func TestRunCanceled(t *testing.T) {
	py := requirePython(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := py.Run(ctx, "import time; time.sleep(5)")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTimeoutWithChildProcess(t *testing.T) {
	py := requirePython(t)
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	_, err := py.Run(ctx,
		"import subprocess, time; subprocess.Popen(['sleep', '8']); "+
			"time.sleep(30)",
	)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second+python.WaitDelay+time.Second)
}

func TestSearchPath(t *testing.T) {
	py := requirePython(t)

	paths, err := py.SearchPath(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, paths)
	for _, p := range paths {
		assert.NotEmpty(t, p)
	}
}
