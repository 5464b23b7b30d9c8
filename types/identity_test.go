package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemIdentity(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		tokenID string
		wantErr bool
	}{
		{name: "valid", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: "42"},
		{name: "valid zero id", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: "0"},
		{name: "token id with spaces", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: " 7 "},
		{name: "bad address", addr: "not-an-address", tokenID: "1", wantErr: true},
		{name: "empty address", addr: "", tokenID: "1", wantErr: true},
		{name: "bad token id", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: "abc", wantErr: true},
		{name: "empty token id", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewItemIdentity(tt.addr, tt.tokenID)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidIdentity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, id.CollectionAddress)
		})
	}
}

func TestItemIdentityMatches(t *testing.T) {
	id, err := NewItemIdentity("0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", "42")
	require.NoError(t, err)

	tests := []struct {
		name    string
		addr    string
		tokenID string
		want    bool
	}{
		{name: "exact", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: "42", want: true},
		{name: "address case differs", addr: "0x4675c7e5baafbffbca748158becba61ef3b0a263", tokenID: "42", want: true},
		{name: "token id numeric equivalence", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: "042", want: true},
		{name: "different token id", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: "43", want: false},
		{name: "different collection", addr: "0x1111111111111111111111111111111111111111", tokenID: "42", want: false},
		{name: "garbage token id", addr: "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", tokenID: "xx", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, id.Matches(tt.addr, tt.tokenID))
		})
	}
}

func TestItemIdentityMatchesBig(t *testing.T) {
	id, err := NewItemIdentity("0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", "42")
	require.NoError(t, err)

	assert.True(t, id.MatchesBig("0x4675c7e5baafbffbca748158becba61ef3b0a263", big.NewInt(42)))
	assert.False(t, id.MatchesBig("0x4675c7e5baafbffbca748158becba61ef3b0a263", big.NewInt(7)))
	assert.False(t, id.MatchesBig("0x4675c7e5baafbffbca748158becba61ef3b0a263", nil))

	assert.Equal(t, int64(42), id.TokenIDBig().Int64())
}
