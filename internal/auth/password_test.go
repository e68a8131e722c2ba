package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.NoError(t, VerifyPassword("s3cret!", hash))
	assert.Error(t, VerifyPassword("other", hash))
}

func TestRandomPassword(t *testing.T) {
	a, err := RandomPassword(12)
	require.NoError(t, err)
	b, err := RandomPassword(12)
	require.NoError(t, err)
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
	for _, c := range a {
		assert.Contains(t, passwordAlphabet, string(c))
	}
}
