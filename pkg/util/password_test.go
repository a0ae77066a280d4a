package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.True(t, CheckPassword("s3cret", hash))
	require.False(t, CheckPassword("wrong", hash))
}

func TestCheckPasswordEmptyHash(t *testing.T) {
	require.False(t, CheckPassword("", ""))
	require.False(t, CheckPassword("anything", ""))
}
