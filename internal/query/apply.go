package query

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type FieldKind int

const (
	StringField FieldKind = iota
	NumberField
	TimeField
)

// Field describes how to extract a sortable value from a record. Only the
// accessor matching the Kind is consulted. Number accessors should report
// missing values as 0, Time accessors as the zero time.
type Field[T any] struct {
	Kind   FieldKind
	String func(T) string
	Number func(T) float64
	Time   func(T) time.Time

	// DefaultOrder, if set, overrides the schema default order when
	// a request sorts by this field without specifying an order.
	DefaultOrder Order
}

// Schema describes the sortable fields of a record type.
type Schema[T any] struct {
	DefaultSort  string
	DefaultOrder Order
	Fields       map[string]Field[T]

	// ID is used as the final tie-breaker so that paging through
	// records which share a sort value is deterministic.
	ID func(T) string
}

func (s Schema[T]) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (s Schema[T]) orderFor(field string) Order {
	if f, ok := s.Fields[field]; ok && f.DefaultOrder != "" {
		return f.DefaultOrder
	}
	if s.DefaultOrder != "" {
		return s.DefaultOrder
	}

	return Asc
}

// Result is a single page of records, along with the number of
// records which matched the filter before the page was sliced out.
type Result[T any] struct {
	Items []T
	Total int
}

// Apply filters, sorts and paginates the records provided. The input
// slice is not modified. A nil match function matches every record.
func Apply[T any](records []T, match func(T) bool, schema Schema[T], params Params) Result[T] {
	filtered := make([]T, 0, len(records))
	for _, r := range records {
		if match == nil || match(r) {
			filtered = append(filtered, r)
		}
	}

	Sort(filtered, schema, params.Sort, params.Order)

	total := len(filtered)
	start := params.Offset()
	if params.Limit <= 0 || start >= total {
		return Result[T]{Items: []T{}, Total: total}
	}

	end := start + params.Limit
	if end > total {
		end = total
	}

	return Result[T]{Items: filtered[start:end], Total: total}
}

// Sort orders the records in place by the named field. Unknown fields
// leave the records ordered by ID only.
func Sort[T any](records []T, schema Schema[T], field string, order Order) {
	f, known := schema.Fields[field]
	collator := collate.New(language.Und)

	compare := func(a, b T) int {
		if !known {
			return 0
		}

		switch f.Kind {
		case NumberField:
			return compareOrdered(f.Number(a), f.Number(b))
		case TimeField:
			return f.Time(a).Compare(f.Time(b))
		default:
			return collator.CompareString(f.String(a), f.String(b))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i], records[j])
		if order == Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		if schema.ID == nil {
			return false
		}

		return schema.ID(records[i]) < schema.ID(records[j])
	})
}

func compareOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}
