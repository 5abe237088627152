package httpserver

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yisu_backoffice/internal/domain"
)

func TestTokens_IssueVerify(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tk := NewTokens("s3cret", time.Hour)
	tk.now = func() time.Time { return now }

	s, err := tk.Issue(domain.UserRecord{ID: 101, Name: "易宿商户", Role: domain.RoleMerchant})
	require.NoError(t, err)

	c, err := tk.Verify(s)
	require.NoError(t, err)
	assert.Equal(t, int64(101), c.UserID())
	assert.Equal(t, domain.RoleMerchant, c.Role)

	tk.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = tk.Verify(s)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokens_RejectsOtherKeysAndMethods(t *testing.T) {
	tk := NewTokens("s3cret", time.Hour)
	other := NewTokens("other", time.Hour)
	s, err := other.Issue(domain.UserRecord{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = tk.Verify(s)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tk.Verify(none)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = tk.Verify("")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
