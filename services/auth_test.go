package services

import (
	"testing"
	"time"

	"coinquest/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: 7, Username: "alice"}

	raw, expires, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	who, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 7, Username: "alice"}, who)
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: 7, Username: "alice"}

	other, _, err := NewTokenIssuer("other", time.Hour).Issue(user)
	require.NoError(t, err)
	expired, _, err := NewTokenIssuer("secret", -time.Minute).Issue(user)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":      "",
		"garbage":    "not-a-token",
		"wrong key":  other,
		"expired":    expired,
		"alg none":   unsigned,
		"no subject": noSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
