package operator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/airdraw/internal/metrics"
	"github.com/kode4food/airdraw/internal/operator"
	"github.com/kode4food/airdraw/internal/python"
	"github.com/kode4food/airdraw/internal/scan"
	"github.com/kode4food/airdraw/pkg/api"
)

type describerFunc func(
	ctx context.Context, module, class string,
) (*api.Signature, error)

func (f describerFunc) Describe(
	ctx context.Context, module, class string,
) (*api.Signature, error) {
	return f(ctx, module, class)
}

var errBoom = errors.New("boom")

func failing(calls *int) operator.Describer {
	return describerFunc(
		func(context.Context, string, string) (*api.Signature, error) {
			*calls++
			return nil, errBoom
		},
	)
}

func succeeding(calls *int) operator.Describer {
	return describerFunc(
		func(_ context.Context, module, class string) (*api.Signature, error) {
			*calls++
			return &api.Signature{ClassName: class, Module: module}, nil
		},
	)
}

func TestFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("first_success_wins", func(t *testing.T) {
		var first, second int
		f := operator.Fallback{succeeding(&first), succeeding(&second)}
		sig, err := f.Describe(ctx, "m", "C")
		require.NoError(t, err)
		assert.Equal(t, "C", sig.ClassName)
		assert.Equal(t, 1, first)
		assert.Equal(t, 0, second)
	})

	t.Run("falls_through_on_error", func(t *testing.T) {
		var first, second int
		f := operator.Fallback{failing(&first), succeeding(&second)}
		_, err := f.Describe(ctx, "m", "C")
		require.NoError(t, err)
		assert.Equal(t, 1, first)
		assert.Equal(t, 1, second)
	})

	t.Run("joins_errors", func(t *testing.T) {
		var calls int
		f := operator.Fallback{failing(&calls), failing(&calls)}
		_, err := f.Describe(ctx, "m", "C")
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 2, calls)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := operator.Fallback{}.Describe(ctx, "m", "C")
		assert.ErrorIs(t, err, operator.ErrNoDescribers)
	})
}

func TestParseStrategy(t *testing.T) {
	s, err := operator.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, operator.DefaultStrategy, s)

	for _, want := range operator.Strategies {
		s, err := operator.ParseStrategy(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, s)
	}

	_, err = operator.ParseStrategy("psychic")
	assert.ErrorIs(t, err, operator.ErrUnknownStrategy)
}

func TestDescribersStatic(t *testing.T) {
	root, _ := providerRoot(t, httpOperators)
	static := operator.NewStatic(scan.New("airflow.providers", []string{root}), 8)
	live := operator.NewLive(python.New("airdraw-no-such-python"))
	d := operator.NewDescribers(static, live, metrics.New())
	ctx := context.Background()
	module := "airflow.providers.http.operators.http"

	sig := d.Describe(ctx, operator.StrategyStatic, module, "SimpleOperator")
	assert.False(t, sig.IsEmpty())

	sig = d.Describe(ctx, operator.StrategyLiveStatic, module, "SimpleOperator")
	assert.Equal(t, []string{"a"}, sig.Required.Names())

	sig = d.Describe(ctx, operator.StrategyLive, module, "SimpleOperator")
	assert.True(t, sig.IsEmpty())
	assert.Equal(t, "SimpleOperator", sig.ClassName)
	assert.NotNil(t, sig.Required)
	assert.NotNil(t, sig.Optional)

	sig = d.Describe(ctx, operator.Strategy("psychic"), module, "SimpleOperator")
	assert.True(t, sig.IsEmpty())

	_, err := d.Get(operator.Strategy("psychic"))
	assert.ErrorIs(t, err, operator.ErrUnknownStrategy)
}
