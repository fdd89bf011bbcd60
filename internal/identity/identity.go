// Package identity generates entity identifiers and avatar colours.
package identity

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Palette is the set of avatar background colours.
var Palette = []string{
	"#FF7A00", "#FF5EB3", "#6E52FF",
	"#9327FF", "#00BEE8", "#1FD7C1",
	"#FF745E", "#FFA35E", "#FC71FF",
	"#FFC701", "#0038FF", "#C3FF2B",
	"#FFE62B", "#FF4646", "#FFBB2B",
}

// NewID returns a random RFC 4122 version 4 identifier.
func NewID() string {
	return uuid.New().String()
}

// RandomColor picks a palette colour uniformly at random.
func RandomColor() string {
	return Palette[rand.IntN(len(Palette))]
}

// ColorFor maps key to a palette colour. The same key always gets the same
// colour.
func ColorFor(key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// Initials builds the one or two letter avatar text for a person. Guests
// only show their first initial.
func Initials(first, last string, guest bool) string {
	f, l := firstLetter(first), firstLetter(last)
	switch {
	case f == "" && l == "":
		return "??"
	case f == "":
		return l
	case guest || l == "":
		return f
	}
	return f + l
}

func firstLetter(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return string(unicode.ToUpper(r))
	}
	return ""
}
