// Package avatar builds DiceBear avatar URLs used when no picture is given.
package avatar

import (
	"fmt"
	"net/url"
	"strings"
)

// Options tunes the generated avatar. Zero values use the defaults.
type Options struct {
	Style      string
	Background string
	Size       int
}

// DiceBearURL returns an initials-style SVG avatar URL seeded by name.
func DiceBearURL(name string, opts Options) string {
	if opts.Style == "" {
		opts.Style = "initials"
	}
	if opts.Background == "" {
		opts.Background = "b6e3f4"
	}
	if opts.Size <= 0 {
		opts.Size = 128
	}
	if strings.TrimSpace(name) == "" {
		name = "user"
	}
	return fmt.Sprintf("https://api.dicebear.com/6.x/%s/svg?seed=%s&backgroundColor=%s&size=%d",
		url.PathEscape(opts.Style), escapeComponent(name), escapeComponent(opts.Background), opts.Size)
}

// escapeComponent percent-encodes s for a query value, spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
