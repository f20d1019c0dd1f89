package operator_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/airdraw/internal/operator"
	"github.com/kode4food/airdraw/internal/python"
)

const liveFixture = `print("noise written while importing")


class BaseThing:
    def __init__(self, conn_id: str, retries=3, **kwargs):
        pass


class InheritedOperator(BaseThing):
    """Inherits its constructor."""


class ChildOperator(BaseThing):
    def __init__(self, *args, target: int, flag=None, **kwargs):
        super().__init__(*args, **kwargs)
`

func liveDescriber(t *testing.T) *operator.Live {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "airdraw_fixture_ops.py"), []byte(liveFixture), 0o600,
	))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "airdraw_fixture_broken.py"),
		[]byte("import airdraw_no_such_dependency\n"), 0o600,
	))
	t.Setenv("PYTHONPATH", dir)
	return operator.NewLive(python.New("python3"))
}

func TestLiveDescribeInherited(t *testing.T) {
	live := liveDescriber(t)

	sig, err := live.Describe(context.Background(),
		"airdraw_fixture_ops", "InheritedOperator",
	)
	require.NoError(t, err)
	assert.Equal(t, "Inherits its constructor.", sig.Doc)
	assert.Equal(t, []string{"conn_id"}, sig.Required.Names())
	assert.Equal(t, []string{"retries"}, sig.Optional.Names())

	connID, _ := sig.Required.Get("conn_id")
	assert.Equal(t, "<class 'str'>", connID.Type)

	retries, _ := sig.Optional.Get("retries")
	assert.Equal(t, "Any", retries.Type)
	assert.Equal(t, "3", *retries.Default)
}

func TestLiveDescribeOverride(t *testing.T) {
	live := liveDescriber(t)

	sig, err := live.Describe(context.Background(),
		"airdraw_fixture_ops", "ChildOperator",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"target"}, sig.Required.Names())
	assert.Equal(t, []string{"flag"}, sig.Optional.Names())

	flag, _ := sig.Optional.Get("flag")
	assert.Nil(t, flag.Default)
}

func TestLiveDescribeFailures(t *testing.T) {
	live := liveDescriber(t)
	ctx := context.Background()

	_, err := live.Describe(ctx, "airdraw_fixture_broken", "AnyOperator")
	assert.ErrorIs(t, err, operator.ErrImportFailed)

	_, err = live.Describe(ctx, "airdraw_fixture_absent", "AnyOperator")
	assert.ErrorIs(t, err, operator.ErrImportFailed)

	_, err = live.Describe(ctx, "airdraw_fixture_ops", "MissingOperator")
	assert.ErrorIs(t, err, operator.ErrClassNotFound)

	_, err = live.Describe(ctx, "", "")
	assert.ErrorIs(t, err, operator.ErrClassNotFound)
}

func TestLiveDescribeMissingInterpreter(t *testing.T) {
	live := operator.NewLive(python.New("airdraw-no-such-python"))

	_, err := live.Describe(context.Background(), "os", "PathLike")
	assert.ErrorIs(t, err, operator.ErrReflectFailed)
	assert.ErrorIs(t, err, python.ErrInterpreterNotFound)
}
