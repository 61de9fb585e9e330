// Package utils contains small helpers shared across packages.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// BlockchainHashBytes is the size of the random value behind a blockchain hash.
const BlockchainHashBytes = 32

// NewBlockchainHash returns "0x" followed by 64 lowercase hex digits drawn
// from a cryptographically secure source. It is an opaque token, not a
// commitment to anything.
func NewBlockchainHash() (string, error) {
	buf := make([]byte, BlockchainHashBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}

// IsBlockchainHash reports whether s has the shape NewBlockchainHash produces.
func IsBlockchainHash(s string) bool {
	if len(s) != 2+2*BlockchainHashBytes || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// SameName compares two person names ignoring case and surrounding space.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Deref returns the value behind p, or fallback when p is nil.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
