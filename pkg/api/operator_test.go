package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/airdraw/pkg/api"
)

func strPtr(s string) *string { return &s }

func TestParameterSetMarshalKeepsOrder(t *testing.T) {
	set := api.ParameterSet{
		{Name: "zeta", Type: "int", Default: strPtr("3")},
		{Name: "alpha", Type: api.AnyType},
		{Name: "mid", Type: "str | None"},
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Equal(t,
		`{"zeta":{"default":"3","type":"int","required":false},`+
			`"alpha":{"default":null,"type":"Any","required":false},`+
			`"mid":{"default":null,"type":"str | None","required":false}}`,
		string(data),
	)
}

func TestParameterSetMarshalRequired(t *testing.T) {
	set := api.ParameterSet{{Name: "sql", Type: "str", Required: true}}

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Equal(t, `{"sql":{"type":"str","required":true}}`, string(data))
}

func TestParameterSetNilMarshalsEmptyObject(t *testing.T) {
	sig := &api.Signature{ClassName: "X", Module: "m"}

	data, err := json.Marshal(sig)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"class_name": "X",
		"module_path": "m",
		"params_without_defaults": {},
		"params_with_defaults": {}
	}`, string(data))
	assert.True(t, sig.IsEmpty())
}

func TestParameterSetRoundTrip(t *testing.T) {
	sig := &api.Signature{
		ClassName: "BashOperator",
		Module:    "airflow.providers.standard.operators.bash",
		Required: api.ParameterSet{
			{Name: "bash_command", Type: "str", Required: true},
		},
		Optional: api.ParameterSet{
			{Name: "env", Type: "dict | None", Default: strPtr("None")},
			{Name: "cwd", Type: "str | None"},
		},
	}

	data, err := json.Marshal(sig)
	require.NoError(t, err)

	var got api.Signature
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"bash_command"}, got.Required.Names())
	assert.Equal(t, []string{"env", "cwd"}, got.Optional.Names())

	env, ok := got.Optional.Get("env")
	require.True(t, ok)
	assert.Equal(t, "None", *env.Default)

	cwd, ok := got.Optional.Get("cwd")
	require.True(t, ok)
	assert.Nil(t, cwd.Default)

	_, ok = got.Optional.Get("missing")
	assert.False(t, ok)
}

func TestParameterSetUnmarshalRejectsArray(t *testing.T) {
	var set api.ParameterSet
	err := json.Unmarshal([]byte(`[1,2]`), &set)
	assert.ErrorIs(t, err, api.ErrParameterSetObject)
}

func TestCatalogOperatorCount(t *testing.T) {
	cat := api.Catalog{
		"a.operators.x": {"XOperator", "YOperator"},
		"a.operators.y": {"ZOperator"},
	}
	assert.Equal(t, 3, cat.OperatorCount())
	assert.Equal(t, 0, api.Catalog{}.OperatorCount())
}

func TestNewOperatorsStatusResponse(t *testing.T) {
	cat := api.Catalog{
		"p.operators.a": {"AOperator", "BOperator"},
		"p.operators.b": {"COperator"},
	}
	errs := []api.DiscoveryError{
		{Module: "p.operators.c", Error: "No operators defined"},
		{Module: "p.operators.d", Error: "File not found"},
		{Module: "p.operators.c", Error: "parse failure"},
	}

	res := api.NewOperatorsStatusResponse(cat, errs)
	assert.Equal(t, 2, res.Summary.TotalAvailableModules)
	assert.Equal(t, 2, res.Summary.TotalUnavailableModules)
	assert.Equal(t, 3, res.Summary.TotalOperators)
	assert.Equal(t, "parse failure", res.Unavailable["p.operators.c"])
	assert.Equal(t, len(res.Unavailable), res.Summary.TotalUnavailableModules)
}

func TestNewOperatorsStatusResponseEmpty(t *testing.T) {
	res := api.NewOperatorsStatusResponse(nil, nil)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"available": {},
		"unavailable": {},
		"summary": {
			"total_available_modules": 0,
			"total_unavailable_modules": 0,
			"total_operators": 0
		}
	}`, string(data))
}
