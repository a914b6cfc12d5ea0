package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("open sesame")
	require.NoError(t, err)
	require.NotEqual(t, "open sesame", hash)

	assert.True(t, CheckPasswordHash("open sesame", hash))
	assert.False(t, CheckPasswordHash("wrong guess", hash))
	assert.False(t, CheckPasswordHash("open sesame", "not-a-bcrypt-hash"))
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"club@example.com",
		"front.desk+booking@padel-club.es",
		"A_b%c@sub.domain.co",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}

	invalid := []string{
		"",
		"not-an-email",
		"missing@tld",
		"@example.com",
		"club@",
		"two words@example.com",
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestGenerateToken(t *testing.T) {
	secret := []byte("test-secret")
	signed, err := GenerateToken(7, secret)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, float64(7), claims["company_id"])
	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	iat, ok := claims["iat"].(float64)
	require.True(t, ok)
	assert.Equal(t, TokenTTL.Seconds(), exp-iat)

	_, err = jwt.ParseWithClaims(signed, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}
