package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssueVerify(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	raw, err := m.Issue("user-123")
	require.NoError(t, err)

	id, err := m.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	raw, err := m.Issue("user-123")
	require.NoError(t, err)

	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	raw, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	_, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		name   string
		header string
		token  string
		err    error
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"missing", "", "", ErrMissingToken},
		{"no scheme", "abc.def.ghi", "", ErrMalformedToken},
		{"wrong scheme", "Basic abc", "", ErrMalformedToken},
		{"empty token", "Bearer ", "", ErrMalformedToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractBearer(tc.header)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.token, got)
		})
	}
}

func TestIsAuthError(t *testing.T) {
	for _, err := range []error{ErrMissingToken, ErrMalformedToken, ErrInvalidToken, ErrExpiredToken, ErrPrincipalNotFound} {
		assert.True(t, IsAuthError(err))
	}
	assert.False(t, IsAuthError(assert.AnError))
}
