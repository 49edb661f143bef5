// Package complete implements "@" file-reference autocompletion on a
// single-line input buffer.
//
// The completer is driven by input-change notifications: after every
// edit the caller passes the live buffer and cursor to Update. When the
// text just before the cursor is an unclosed trigger ("@" followed by a
// query with no whitespace), the completer lists the matching files.
// Cursor positions are rune offsets, as reported by bubbles/textinput.
package complete

import (
	"fmt"
	"unicode"

	"github.com/minios-linux/draftkit/scanner"
)

// Trigger opens file-reference completion.
const Trigger = '@'

// Source provides the candidate files. *scanner.Scanner implements it.
type Source interface {
	Scan() []string
	Resolve(rel string) string
}

// Completer holds the suggestion popup state.
type Completer struct {
	src      Source
	active   bool
	query    string
	items    []string
	selected int
}

// New returns a completer listing files from src.
func New(src Source) *Completer {
	return &Completer{src: src}
}

// Active reports whether suggestions are being shown.
func (c *Completer) Active() bool { return c.active }

// Query returns the text typed after the trigger.
func (c *Completer) Query() string { return c.query }

// Items returns the current suggestions in scan order.
func (c *Completer) Items() []string { return c.items }

// Selected returns the index of the highlighted suggestion.
func (c *Completer) Selected() int { return c.selected }

// Current returns the highlighted suggestion.
func (c *Completer) Current() (string, bool) {
	if !c.active || c.selected >= len(c.items) {
		return "", false
	}
	return c.items[c.selected], true
}

// Update re-evaluates the buffer after an edit. The source is scanned on
// every call. The highlighted row survives the refresh while it is still
// in range.
func (c *Completer) Update(buffer string, cursor int) {
	runes := []rune(buffer)
	start, ok := findTrigger(runes, cursor)
	if !ok {
		c.Close()
		return
	}

	query := string(runes[start+1 : clamp(cursor, len(runes))])
	items := scanner.Filter(c.src.Scan(), query)
	if len(items) == 0 {
		c.Close()
		return
	}

	if !c.active || c.selected >= len(items) {
		c.selected = 0
	}
	c.active = true
	c.query = query
	c.items = items
}

// Next moves the highlight down, stopping at the last item.
func (c *Completer) Next() {
	if c.active && c.selected < len(c.items)-1 {
		c.selected++
	}
}

// Prev moves the highlight up, stopping at the first item.
func (c *Completer) Prev() {
	if c.active && c.selected > 0 {
		c.selected--
	}
}

// Accept replaces the trigger and query with a reference to the
// highlighted file and returns the new buffer and cursor. Without an
// active suggestion the input is returned unchanged.
func (c *Completer) Accept(buffer string, cursor int) (string, int) {
	rel, ok := c.Current()
	if !ok {
		return buffer, cursor
	}
	runes := []rune(buffer)
	start, found := findTrigger(runes, cursor)
	c.Close()
	if !found {
		return buffer, cursor
	}

	cursor = clamp(cursor, len(runes))
	ref := []rune(FormatReference(rel, c.src.Resolve(rel)))
	out := make([]rune, 0, len(runes)+len(ref))
	out = append(out, runes[:start]...)
	out = append(out, ref...)
	out = append(out, runes[cursor:]...)
	return string(out), start + len(ref)
}

// Cancel closes the popup and strips the dangling trigger and partial
// query from the buffer.
func (c *Completer) Cancel(buffer string, cursor int) (string, int) {
	c.Close()
	runes := []rune(buffer)
	start, found := findTrigger(runes, cursor)
	if !found {
		return buffer, cursor
	}
	cursor = clamp(cursor, len(runes))
	out := append(append([]rune{}, runes[:start]...), runes[cursor:]...)
	return string(out), start
}

// Close hides the popup without touching the buffer.
func (c *Completer) Close() {
	c.active = false
	c.query = ""
	c.items = nil
	c.selected = 0
}

// FormatReference renders an inserted file reference.
func FormatReference(rel, abs string) string {
	return fmt.Sprintf("[%s](%s)", rel, abs)
}

// findTrigger returns the index of the trigger that is still open at
// cursor: the nearest "@" before the cursor with no whitespace in between.
func findTrigger(runes []rune, cursor int) (int, bool) {
	cursor = clamp(cursor, len(runes))
	for i := cursor - 1; i >= 0; i-- {
		switch r := runes[i]; {
		case r == Trigger:
			return i, true
		case unicode.IsSpace(r):
			return 0, false
		}
	}
	return 0, false
}

func clamp(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
