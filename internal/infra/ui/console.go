// Where: fnctl/internal/infra/ui/console.go
// What: Console output helpers for consistent CLI UX.
// Why: Standardize emojis, indentation, and structure across commands.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// KeyValue is a key/value pair rendered inside a block.
type KeyValue struct {
	Key   string
	Value any
}

// UserInterface exposes high-level output helpers used by usecases.
type UserInterface interface {
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Block(emoji, title string, rows []KeyValue)
}

// Console provides helper methods for formatted output.
// It is safe for concurrent use; each call writes whole lines.
type Console struct {
	Out          io.Writer
	EmojiEnabled bool

	mu sync.Mutex
}

// New creates a new Console writing to the provided writer.
func New(out io.Writer) *Console {
	return &Console{Out: out, EmojiEnabled: true}
}

// NewWithEmoji creates a new Console with explicit emoji settings.
func NewWithEmoji(out io.Writer, enabled bool) *Console {
	return &Console{Out: out, EmojiEnabled: enabled}
}

// Header prints a section header with an emoji.
// Example: 🔎 Discovered functions.
func (c *Console) Header(emoji, title string) {
	c.printf("%s%s\n", c.emojiPrefix(emoji), title)
}

// Item prints a key-value item with indentation.
// Example:    Key: Value.
func (c *Console) Item(key string, value any) {
	c.printf("   %-30s %v\n", key+":", value)
}

// ItemPlain prints a generic indented line.
func (c *Console) ItemPlain(msg string) {
	c.printf("   %s\n", msg)
}

// Success prints a success message with a checkmark.
func (c *Console) Success(msg string) {
	c.printf("%s%s\n", c.prefix("✅", "[ok] "), msg)
}

// Info prints an info message.
func (c *Console) Info(msg string) {
	c.printf("%s\n", msg)
}

// Warn prints a warning message with an emoji.
func (c *Console) Warn(msg string) {
	c.printf("%s%s\n", c.prefix("⚠️", "[warn] "), msg)
}

// Error prints an error message with an emoji.
func (c *Console) Error(msg string) {
	c.printf("%s%s\n", c.prefix("❌", "[error] "), msg)
}

// Block prints a blank-line padded block of key/value rows under a header.
func (c *Console) Block(emoji, title string, rows []KeyValue) {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s%s\n", c.emojiPrefix(emoji), title)
	for _, kv := range rows {
		fmt.Fprintf(&b, "   %-30s %v\n", kv.Key+":", kv.Value)
	}
	b.WriteString("\n")
	c.printf("%s", b.String())
}

func (c *Console) printf(format string, args ...any) {
	if c == nil || c.Out == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Console) prefix(emoji, fallback string) string {
	if p := c.emojiPrefix(emoji); p != "" {
		return p
	}
	return fallback
}

func (c *Console) emojiPrefix(emoji string) string {
	if !c.EmojiEnabled || strings.TrimSpace(emoji) == "" {
		return ""
	}
	return emoji + " "
}
