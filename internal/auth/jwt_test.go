package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", "approval-test", time.Minute, time.Hour)
}

func TestGeneratePair_RoundTrip(t *testing.T) {
	tm := newTestManager()

	pair, err := tm.GeneratePair(42, "checker")
	require.NoError(t, err)

	c, err := tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, "checker", c.Role)
	assert.Equal(t, "approval-test", c.Issuer)

	r, err := tm.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), r.UserID)
}

func TestParse_RejectsWrongTokenType(t *testing.T) {
	tm := newTestManager()
	pair, err := tm.GeneratePair(1, "maker")
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsExpired(t *testing.T) {
	tm := newTestManager()
	issued := time.Now().Add(-2 * time.Minute)
	tm.now = func() time.Time { return issued }
	pair, err := tm.GeneratePair(1, "maker")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherIssuer(t *testing.T) {
	other := NewTokenManager("access-secret", "refresh-secret", "someone-else", time.Minute, time.Hour)
	pair, err := other.GeneratePair(1, "maker")
	require.NoError(t, err)

	_, err = newTestManager().ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
