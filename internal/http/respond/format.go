// Package respond shapes admin responses as JSON envelopes or browser redirects.
package respond

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Format is the response representation a client asked for.
type Format int

const (
	// FormatHTML answers with pages and redirects.
	FormatHTML Format = iota
	// FormatJSON answers with JSON envelopes.
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "html"
}

// formatContextKey caches the resolved format on the gin context.
const formatContextKey = "respondFormat"

// ResolveFormat picks FormatJSON when the most preferred media type in accept is JSON.
func ResolveFormat(accept string) Format {
	type mediaRange struct {
		value string
		q     float64
	}
	var ranges []mediaRange
	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(part, ";")
		value := strings.ToLower(strings.TrimSpace(fields[0]))
		if value == "" {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			name, raw, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(name) != "q" {
				continue
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				q = parsed
			}
		}
		ranges = append(ranges, mediaRange{value: value, q: q})
	}
	if len(ranges) == 0 {
		return FormatHTML
	}
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].q > ranges[j].q })
	top := ranges[0].value
	if strings.Contains(top, "/json") || strings.Contains(top, "+json") {
		return FormatJSON
	}
	return FormatHTML
}

// FormatOf resolves the request format once and caches it on the context.
func FormatOf(c *gin.Context) Format {
	if cached, ok := c.Get(formatContextKey); ok {
		if format, okFormat := cached.(Format); okFormat {
			return format
		}
	}
	format := ResolveFormat(c.GetHeader("Accept"))
	c.Set(formatContextKey, format)
	return format
}
