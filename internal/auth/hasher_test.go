package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHasherParams keep argon2 cheap enough for the test suite.
var testHasherParams = HasherParams{
	Time:    1,
	Memory:  8 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(testHasherParams)

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, h.Verify(digest, "correct horse battery staple"))
	assert.False(t, h.Verify(digest, "correct horse battery stample"))
	assert.False(t, h.Verify(digest, ""))
}

func TestHashProducesUniqueSalts(t *testing.T) {
	h := NewHasher(testHasherParams)

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify(first, "same password"))
	assert.True(t, h.Verify(second, "same password"))
}

func TestHashFormat(t *testing.T) {
	h := NewHasher(testHasherParams)

	digest, err := h.Hash("secret")
	require.NoError(t, err)

	parts := strings.Split(digest, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, "v=19", parts[2])
	assert.Equal(t, "m=8192,t=1,p=1", parts[3])
}

func TestVerifyReadsParamsFromDigest(t *testing.T) {
	// Digest created under one parameter set must verify under a hasher
	// configured with another, since the digest carries its own costs.
	old := NewHasher(testHasherParams)
	digest, err := old.Hash("migrating password")
	require.NoError(t, err)

	current := NewHasher(HasherParams{Time: 2, Memory: 16 * 1024, Threads: 2, KeyLen: 32, SaltLen: 16})
	assert.True(t, current.Verify(digest, "migrating password"))
}

func TestVerifyRejectsMalformedDigests(t *testing.T) {
	h := NewHasher(testHasherParams)

	for _, digest := range []string{
		"",
		"not a digest",
		"$argon2id$v=19$m=8192,t=1,p=1$onlyonepart",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!!",
	} {
		assert.False(t, h.Verify(digest, "whatever"), "digest %q should not verify", digest)
	}
}
