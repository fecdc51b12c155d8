// Package og renders the Open Graph preview image for a comparison.
package og

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

// Image dimensions recommended for og:image.
const (
	Width  = 1200
	Height = 630
)

// ContentType is the media type of SVG output.
const ContentType = "image/svg+xml"

// CacheControl lets shared caches keep an image for a day.
const CacheControl = "public, max-age=86400, immutable"

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// Escape escapes s for use in SVG text and attribute values.
func Escape(s string) string {
	return escaper.Replace(s)
}

// FormatPerSec renders a per-second rate compactly: two decimals from 1,
// three decimals from 0.001, scientific notation below that.
func FormatPerSec(perSec float64) string {
	switch {
	case math.IsNaN(perSec) || math.IsInf(perSec, 0):
		return "0"
	case perSec >= 1:
		return strconv.FormatFloat(perSec, 'f', 2, 64) + "/s"
	case perSec >= 0.001:
		return strconv.FormatFloat(perSec, 'f', 3, 64) + "/s"
	}
	return shortExponent(strconv.FormatFloat(perSec, 'e', 3, 64)) + "/s"
}

// shortExponent turns "1.585e-04" into "1.585e-4".
func shortExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	mant, sign, exp := s[:i], s[i+1], strings.TrimLeft(s[i+2:], "0")
	if exp == "" {
		exp = "0"
	}
	return mant + "e" + string(sign) + exp
}

const svgTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%[1]d" height="%[2]d" viewBox="0 0 %[1]d %[2]d" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="g" x1="0" x2="1">
      <stop offset="0%%" stop-color="#4f46e5" />
      <stop offset="100%%" stop-color="#06b6d4" />
    </linearGradient>
  </defs>
  <rect width="100%%" height="100%%" fill="#0f172a" />
  <rect x="80" y="300" width="%[7]d" height="12" rx="6" fill="url(#g)" />
  <g transform="translate(80,120)">
    <text x="0" y="0" font-family="Inter, Roboto, Arial, sans-serif" font-size="48" fill="#ffffff">%[3]s</text>
    <text x="0" y="64" font-family="Inter, Roboto, Arial, sans-serif" font-size="36" fill="#a5b4fc">%[4]s</text>
  </g>
  <g transform="translate(640,120)">
    <text x="0" y="0" font-family="Inter, Roboto, Arial, sans-serif" font-size="48" fill="#ffffff">%[5]s</text>
    <text x="0" y="64" font-family="Inter, Roboto, Arial, sans-serif" font-size="36" fill="#7dd3fc">%[6]s</text>
  </g>
  <g transform="translate(80,520)">
    <text x="0" y="0" font-family="Inter, Roboto, Arial, sans-serif" font-size="24" fill="#cbd5e1">Salary counters grow live. Open to watch them grow!</text>
  </g>
</svg>`

// SVG renders the preview image for c.
func SVG(c domain.Comparison) string {
	nameA, nameB := c.NameA, c.NameB
	if nameA == "" {
		nameA = "A"
	}
	if nameB == "" {
		nameB = "B"
	}
	return fmt.Sprintf(svgTemplate, Width, Height,
		Escape(nameA), Escape(FormatPerSec(c.PerSecA)),
		Escape(nameB), Escape(FormatPerSec(c.PerSecB)),
		barWidth(c))
}

// barWidth scales the gradient bar by the leader's share of the combined rate.
func barWidth(c domain.Comparison) int {
	const full = Width - 160
	total := c.PerSecA + c.PerSecB
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return full / 2
	}
	share := math.Max(c.PerSecA, c.PerSecB) / total
	return int(math.Round(full * share))
}
