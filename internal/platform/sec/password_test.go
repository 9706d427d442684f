// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package sec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_ProducesBcrypt(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$2"), "expected a bcrypt encoding, got %q", encoded)
	assert.True(t, isBcryptEncoded(encoded))
}

func TestMatches_BcryptEncoding(t *testing.T) {
	encoded, err := HashPassword("s3cret")
	require.NoError(t, err)

	verifier := NewPasswordVerifier(false)

	assert.True(t, verifier.Matches("s3cret", encoded))
	assert.False(t, verifier.Matches("not-the-password", encoded))
	assert.False(t, verifier.Matches("", encoded))
}

func TestMatches_PlaintextRequiresOptIn(t *testing.T) {
	// 1. With plaintext disabled a stored raw value never matches, even exactly.
	strict := NewPasswordVerifier(false)
	assert.False(t, strict.Matches("s3cret", "s3cret"))

	// 2. With plaintext enabled the legacy seed path works.
	lenient := NewPasswordVerifier(true)
	assert.True(t, lenient.Matches("s3cret", "s3cret"))
	assert.False(t, lenient.Matches("s3cret", "other"))
}

func TestMatches_PlaintextNeverShadowsBcrypt(t *testing.T) {
	encoded, err := HashPassword("s3cret")
	require.NoError(t, err)

	// A raw password equal to the stored hash string must not match: the
	// bcrypt prefix forces the bcrypt comparison path.
	lenient := NewPasswordVerifier(true)
	assert.False(t, lenient.Matches(encoded, encoded))
	assert.True(t, lenient.Matches("s3cret", encoded))
}
