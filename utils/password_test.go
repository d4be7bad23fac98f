package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassRoundTrip(t *testing.T) {
	hash, err := HashPass("s3cret")
	require.NoError(t, err)
	assert.Len(t, strings.Split(hash, "."), 2)
	assert.NotContains(t, hash, "s3cret")

	assert.NoError(t, ComparePass("s3cret", hash))
	assert.ErrorIs(t, ComparePass("wrong", hash), ErrIncorrectPassword)
}

func TestHashPassIsSalted(t *testing.T) {
	a, err := HashPass("same")
	require.NoError(t, err)
	b, err := HashPass("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestComparePassBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter2"), 10)
	require.NoError(t, err)

	assert.NoError(t, ComparePass("hunter2", string(legacy)))
	assert.ErrorIs(t, ComparePass("hunter3", string(legacy)), ErrIncorrectPassword)
}

func TestComparePassMalformed(t *testing.T) {
	for _, hash := range []string{"", "nodot", "a.b.c", "!!!.AAAA", "AAAA.", "AAAA.***"} {
		assert.ErrorIs(t, ComparePass("x", hash), ErrInvalidHashFormat, hash)
	}
}
