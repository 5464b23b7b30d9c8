package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressParams struct {
	Address string `validate:"omitempty,address"`
	Mode    string `validate:"omitempty,oneof=marketplace auction"`
}

func TestVerify(t *testing.T) {
	require.NoError(t, Verify(&addressParams{}))
	require.NoError(t, Verify(&addressParams{
		Address: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263",
		Mode:    "auction",
	}))

	err := Verify(&addressParams{Address: "not-an-address"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed on verify params")

	assert.Error(t, Verify(&addressParams{Mode: "other"}))
}
