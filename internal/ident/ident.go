// Package ident allocates the human readable, sequential identifiers
// used by catalog entities (mov_001, dir_014, ...).
//
// Allocation is a pure function of the identifiers that already exist.
// Callers must hold the store's write lock (or equivalent) while
// allocating and inserting, otherwise two writers reading the same
// snapshot would be handed the same id.
package ident

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Movie Kind = iota
	Director
	Genre
	Collection
)

const padWidth = 3

var prefixes = map[Kind]string{
	Movie:      "mov",
	Director:   "dir",
	Genre:      "gen",
	Collection: "col",
}

func (k Kind) Prefix() string { return prefixes[k] }

func (k Kind) String() string {
	switch k {
	case Movie:
		return "movie"
	case Director:
		return "director"
	case Genre:
		return "genre"
	case Collection:
		return "collection"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Format renders the identifier for the n'th entity of the given kind.
// Numbers wider than the pad width are rendered in full.
func Format(kind Kind, n int) string {
	return fmt.Sprintf("%s_%0*d", kind.Prefix(), padWidth, n)
}

// Parse splits an identifier in to its kind and numeric suffix. The
// boolean is false if the identifier does not follow the scheme.
func Parse(id string) (Kind, int, bool) {
	prefix, suffix, found := strings.Cut(id, "_")
	if !found || len(suffix) < padWidth {
		return 0, 0, false
	}

	for kind, p := range prefixes {
		if p != prefix {
			continue
		}

		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 || strings.HasPrefix(suffix, "+") {
			return 0, 0, false
		}

		return kind, n, true
	}

	return 0, 0, false
}

// Max returns the highest numeric suffix among the identifiers
// of the given kind. Identifiers that belong to another kind, or that do
// not follow the scheme, are ignored.
func Max(kind Kind, existing []string) int {
	highest := 0
	for _, id := range existing {
		k, n, ok := Parse(id)
		if ok && k == kind && n > highest {
			highest = n
		}
	}

	return highest
}

// Next returns the identifier following the highest existing one, or
// the first identifier for the kind if none exist.
func Next(kind Kind, existing []string) string {
	return Format(kind, Max(kind, existing)+1)
}
