package models

import (
	"fmt"
	"unicode/utf8"
)

// ItemName is the display name of a catalogue item, 1 to 255 characters
// counted as runes rather than bytes.
type ItemName string

const maxItemNameRunes = 255

// NewItemName returns an ItemName or an error when s is empty or too long.
func NewItemName(s string) (ItemName, error) {
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		return "", fmt.Errorf("item name must not be empty")
	case n > maxItemNameRunes:
		return "", fmt.Errorf("item name must not exceed %d characters (got %d)", maxItemNameRunes, n)
	case !utf8.ValidString(s):
		return "", fmt.Errorf("item name must be valid UTF-8")
	}
	return ItemName(s), nil
}

func (n ItemName) String() string {
	return string(n)
}
