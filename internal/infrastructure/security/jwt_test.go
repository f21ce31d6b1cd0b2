package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("spore_queen", testSecret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "spore_queen", sub)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken("spore_queen", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("spore_queen", testSecret, time.Minute)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "some-other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateAccessTokenMalformed(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ValidateAccessToken(token, testSecret)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestValidateAccessTokenTampered(t *testing.T) {
	token, err := GenerateAccessToken("spore_queen", testSecret, time.Minute)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateAccessToken(tampered, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
