package security

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateULID(t *testing.T) {
	a := GenerateULID()
	b := GenerateULID()

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestGenerateConfirmationNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateConfirmationNumber()
		require.Len(t, code, 12)
		seen[code] = true
	}
	// ULID tails carry the entropy bits, so collisions in a small batch
	// would indicate a broken generator.
	assert.Greater(t, len(seen), 90)
}

func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(64)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	_, err = hex.DecodeString(key)
	assert.NoError(t, err)
}
