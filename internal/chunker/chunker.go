// Package chunker packs review text into a bounded prompt body.
package chunker

import (
	"strings"
	"unicode"
)

const (
	DefaultMaxChars  = 8000
	DefaultSeparator = "\n\n"
)

// Options configures packing behavior.
type Options struct {
	MaxChars  int
	Separator string
}

// DefaultOptions returns default packing options.
func DefaultOptions() Options {
	return Options{
		MaxChars:  DefaultMaxChars,
		Separator: DefaultSeparator,
	}
}

// Pack joins texts in order, skipping blank ones, until MaxChars is reached.
// The text that crosses the limit is cut on a sentence boundary when one
// exists, else on a word boundary. Texts after it are dropped.
func Pack(texts []string, opts Options) string {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}

	var b strings.Builder
	for _, raw := range texts {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}

		budget := opts.MaxChars - b.Len()
		if b.Len() > 0 {
			budget -= len(opts.Separator)
		}
		if budget <= 0 {
			break
		}

		fits := len(text) <= budget
		if !fits {
			text = cut(text, budget)
			if text == "" {
				break
			}
		}
		if b.Len() > 0 {
			b.WriteString(opts.Separator)
		}
		b.WriteString(text)
		if !fits {
			break
		}
	}
	return b.String()
}

// cut shortens text to at most limit bytes.
func cut(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	head := text[:limit]

	// Last sentence end in the window.
	if i := strings.LastIndexAny(head, ".!?"); i > 0 && i+1 >= limit/4 {
		return strings.TrimSpace(head[:i+1])
	}

	// Last word boundary.
	if i := strings.LastIndexFunc(head, unicode.IsSpace); i > 0 {
		return strings.TrimSpace(head[:i])
	}

	// No boundary: back off to a rune start.
	for limit > 0 && !isRuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
