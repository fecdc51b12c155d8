// Package slug builds unique, URL-safe comparison slugs.
package slug

import (
	"crypto/rand"
	"strings"

	gslug "github.com/gosimple/slug"
)

const (
	// MaxCanonical caps the "{a}-vs-{b}" part of a slug.
	MaxCanonical = 50
	// TokenLength is the length of the random suffix.
	TokenLength = 6
	// MaxLength is the longest slug Safe can return.
	MaxLength = MaxCanonical + 1 + TokenLength
)

const base62 = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Safe returns "{nameA}-vs-{nameB}" lowercased and stripped to URL-safe
// characters, truncated to MaxCanonical, with a random base62 suffix.
func Safe(nameA, nameB string) string {
	return Canonical(nameA, nameB) + "-" + Token(TokenLength)
}

// Canonical returns the deterministic part of the slug.
func Canonical(nameA, nameB string) string {
	s := gslug.Make(nameA + "-vs-" + nameB)
	if len(s) > MaxCanonical {
		s = s[:MaxCanonical]
	}
	s = strings.Trim(s, "-_")
	if s == "" {
		return "vs"
	}
	return s
}

// Token returns n uniformly random base62 characters.
func Token(n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic("slug: crypto/rand failed: " + err.Error())
		}
		for _, b := range buf {
			// 248 = 4*62; rejecting the tail keeps the distribution uniform.
			if b >= 248 {
				continue
			}
			out = append(out, base62[int(b)%len(base62)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

// Valid reports whether s could have been produced by Safe.
func Valid(s string) bool {
	if s == "" || len(s) > MaxLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
