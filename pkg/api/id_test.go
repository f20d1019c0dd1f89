package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/airdraw/pkg/api"
)

func TestDAGIDValidate(t *testing.T) {
	valid := []api.DAGID{"etl", "etl_daily", "etl-v1.2", "A9"}
	for _, id := range valid {
		assert.NoError(t, id.Validate(), string(id))
	}

	invalid := []api.DAGID{"", ".", "..", "../etc", "a/b", `a\b`, "sp ace"}
	for _, id := range invalid {
		assert.ErrorIs(t, id.Validate(), api.ErrInvalidDAGID, string(id))
	}
}
