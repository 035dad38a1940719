package security_test

import (
	"strings"
	"testing"

	"github.com/modernsales/pawnshop/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecretRoundTrip(t *testing.T) {
	hash, err := security.HashSecret("197781", fastParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$"))

	ok, err := security.VerifySecret("197781", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifySecret("000000", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSecretSaltsEachCall(t *testing.T) {
	a, err := security.HashSecret("197781", fastParams)
	require.NoError(t, err)
	b, err := security.HashSecret("197781", fastParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashSecretRejectsEmpty(t *testing.T) {
	_, err := security.HashSecret("", fastParams)
	assert.Error(t, err)
}

func TestVerifySecretMalformed(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$bcrypt$v=19$m=8,t=1,p=1$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=8,t=1,p=0$c2FsdHNhbHQ$aGFzaA",
		"$argon2id$v=19$m=8,t=1,p=1$$aGFzaA",
		"$argon2id$v=19$m=8;t=1$c2FsdHNhbHQ$aGFzaA",
	} {
		_, err := security.VerifySecret("x", encoded)
		assert.ErrorIs(t, err, security.ErrMalformedHash, encoded)
	}
}
