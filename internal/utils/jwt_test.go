package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func parseClaims(t *testing.T, secret, token string) jwt.MapClaims {
	t.Helper()
	tok, err := jwt.Parse(token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)
	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestNewAccessToken(t *testing.T) {
	t.Run("family claim round-trips", func(t *testing.T) {
		at, err := NewAccessToken("secret", 42, 7, 15)
		require.NoError(t, err)

		claims := parseClaims(t, "secret", at.Token)
		require.EqualValues(t, 42, claims["sub"])
		require.EqualValues(t, 7, claims["fam"])
		require.NotZero(t, claims["exp"])
		require.NotZero(t, claims["iat"])
	})

	t.Run("no family omits the claim entirely", func(t *testing.T) {
		at, err := NewAccessToken("secret", 42, 0, 15)
		require.NoError(t, err)

		claims := parseClaims(t, "secret", at.Token)
		_, present := claims["fam"]
		require.False(t, present)
	})

	t.Run("wrong secret fails verification", func(t *testing.T) {
		at, err := NewAccessToken("secret", 42, 7, 15)
		require.NoError(t, err)

		_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
			return []byte("other"), nil
		})
		require.Error(t, err)
	})
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(7)
	require.NoError(t, err)
	require.Len(t, rt.Raw, 96)

	// Hashing is deterministic and never equals the raw token.
	require.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
	require.NotEqual(t, rt.Raw, HashRefreshRaw(rt.Raw))
}
