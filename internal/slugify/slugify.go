// Package slugify derives URL-safe identifiers from display names.
package slugify

import (
	"strings"

	"github.com/gosimple/slug"
)

// Make converts a title or name into a lowercase URL-safe slug.
// "Go, Concurrency & You!" -> "go-concurrency-you".
func Make(s string) string {
	return slug.Make(strings.ToLower(s))
}
