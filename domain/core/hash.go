package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a SHA-256 digest in lowercase hex form.
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	InputHash   Hash
	OutputHash  Hash
	ContentHash Hash
	ChainHash   Hash
)

func NewInputHash(data []byte) InputHash     { return InputHash(NewHash(data)) }
func NewOutputHash(data []byte) OutputHash   { return OutputHash(NewHash(data)) }
func NewContentHash(data []byte) ContentHash { return ContentHash(NewHash(data)) }

func (h InputHash) String() string   { return Hash(h).String() }
func (h OutputHash) String() string  { return Hash(h).String() }
func (h ContentHash) String() string { return Hash(h).String() }
func (h ChainHash) String() string   { return Hash(h).String() }
func (h ChainHash) IsEmpty() bool    { return Hash(h).IsEmpty() }
