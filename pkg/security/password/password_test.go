package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("cLQ^C#oFXloS")
	require.NoError(t, err)
	assert.NotEqual(t, "cLQ^C#oFXloS", hash)

	assert.NoError(t, h.Compare(hash, "cLQ^C#oFXloS"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrMismatch)
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	assert.ErrorIs(t, h.Compare("not-a-hash", "password"), ErrMismatch)
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{name: "minimum", cost: bcrypt.MinCost, want: bcrypt.MinCost},
		{name: "zero falls back to default", cost: 0, want: bcrypt.DefaultCost},
		{name: "too high falls back to default", cost: bcrypt.MaxCost + 1, want: bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBcryptHasher(tt.cost).Cost)
		})
	}
}
