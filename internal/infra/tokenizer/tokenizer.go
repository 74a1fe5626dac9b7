package tokenizer

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Counter estimates the prompt tokens of a text for a model.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// New loads the BPE ranks for model. When they cannot be loaded, for
// example offline, the counter switches to a character heuristic.
func New(model string, logger *slog.Logger) *Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		if logger != nil {
			logger.Warn("tiktoken unavailable, using heuristic token counts", "model", model, "error", err)
		}
		return &Counter{}
	}
	return &Counter{encoding: enc}
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c != nil && c.encoding != nil {
		return len(c.encoding.Encode(text, nil, nil))
	}
	return Estimate(text)
}

// Estimate approximates tokens as the larger of the word count and a
// quarter of the rune count.
func Estimate(text string) int {
	words := len(strings.Fields(text))
	chars := (utf8.RuneCountInString(text) + 3) / 4
	if words > chars {
		return words
	}
	return chars
}
