// Package idgen generates short, URL-safe identifiers backed by nanoid. They
// tag outgoing API requests and name export objects.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RequestPrefix is prepended to request IDs.
const RequestPrefix = "req-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 12

// RequestID returns a new ID for the X-Request-ID header.
func RequestID() (string, error) {
	return WithPrefix(RequestPrefix)
}

// Suffix returns a random token with no prefix, for making names unique.
func Suffix(n int) (string, error) {
	id, err := nanoid.Generate(Alphabet, n)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id, nil
}

// WithPrefix returns a new unique ID with the given prefix.
func WithPrefix(prefix string) (string, error) {
	id, err := Suffix(Length)
	if err != nil {
		return "", err
	}
	return prefix + id, nil
}
