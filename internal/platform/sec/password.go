// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package sec

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// # Password Verification

// PasswordVerifier compares raw passwords with their stored encodings.
//
// # Dual Encoding
//
// Two encodings exist in the wild: bcrypt hashes (the only acceptable form in
// production) and legacy plain-text values left over from development seeds.
// Plain-text comparison is disabled unless explicitly enabled via
// configuration — it never activates on prefix-sniffing alone, so a stored
// value that merely fails to look like a bcrypt hash cannot silently
// downgrade verification.
type PasswordVerifier struct {
	allowPlaintext bool
}

// NewPasswordVerifier constructs a verifier.
//
// allowPlaintext must only ever be true outside production; config.Load
// rejects the combination of production environment and plaintext passwords.
func NewPasswordVerifier(allowPlaintext bool) *PasswordVerifier {
	return &PasswordVerifier{allowPlaintext: allowPlaintext}
}

// Matches reports whether the raw password corresponds to the stored encoding.
func (verifier *PasswordVerifier) Matches(rawPassword, storedEncoding string) bool {
	if isBcryptEncoded(storedEncoding) {
		// bcrypt comparison is constant-time internally.
		return bcrypt.CompareHashAndPassword([]byte(storedEncoding), []byte(rawPassword)) == nil
	}

	if !verifier.allowPlaintext {
		return false
	}

	// Constant-time equality for the legacy plain-text path.
	return subtle.ConstantTimeCompare([]byte(rawPassword), []byte(storedEncoding)) == 1
}

// isBcryptEncoded recognizes the standard bcrypt prefix variants.
func isBcryptEncoded(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
