package log_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/airdraw/pkg/log"
)

type errStub string

func TestModule(t *testing.T) {
	attr := log.Module("airflow.providers.http.operators.http")
	assertAttrEqual(t, attr, "module", "airflow.providers.http.operators.http")
}

func TestOperator(t *testing.T) {
	attr := log.Operator("HttpOperator")
	assertAttrEqual(t, attr, "operator", "HttpOperator")
}

func TestDAGID(t *testing.T) {
	attr := log.DAGID("etl_daily")
	assertAttrEqual(t, attr, "dag_id", "etl_daily")
}

func TestPath(t *testing.T) {
	attr := log.Path("/tmp/ops.py")
	assertAttrEqual(t, attr, "path", "/tmp/ops.py")
}

func TestStrategy(t *testing.T) {
	attr := log.Strategy("static")
	assertAttrEqual(t, attr, "strategy", "static")
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func TestErrorString(t *testing.T) {
	attr := log.ErrorString("badness")
	assertAttrEqual(t, attr, "error", "badness")
}

func (e errStub) Error() string { return string(e) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
