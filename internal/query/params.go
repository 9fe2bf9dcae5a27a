package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage bounds the page index so the offset of any page fits in an
	// int, and in a Postgres bigint.
	MaxPage = 1_000_000_000
)

// Params holds the sorting and pagination instructions for
// a list request. Page is zero-based.
type Params struct {
	Sort  string
	Order Order
	Page  int
	Limit int
}

// ParamError is returned when a request contains a sort/page
// parameter that cannot be honoured.
type ParamError struct {
	Param   string
	Message string
}

func (err *ParamError) Error() string {
	return fmt.Sprintf("invalid query parameter '%s': %s", err.Param, err.Message)
}

// DefaultParams returns the parameters used when a request provides
// none of its own.
func DefaultParams[T any](schema Schema[T]) Params {
	return Params{
		Sort:  schema.DefaultSort,
		Order: schema.orderFor(schema.DefaultSort),
		Page:  0,
		Limit: DefaultLimit,
	}
}

// ParseParams extracts sort, order, page and limit from the query values
// provided, applying the schema defaults for any which are missing.
func ParseParams[T any](values url.Values, schema Schema[T]) (Params, error) {
	params := DefaultParams(schema)

	if sort := strings.TrimSpace(values.Get("sort")); sort != "" {
		if _, ok := schema.Fields[sort]; !ok {
			return params, &ParamError{"sort", fmt.Sprintf("cannot sort by '%s' (allowed: %s)", sort, strings.Join(schema.FieldNames(), ", "))}
		}
		params.Sort = sort
		params.Order = schema.orderFor(sort)
	}

	if order := strings.ToLower(strings.TrimSpace(values.Get("order"))); order != "" {
		switch Order(order) {
		case Asc, Desc:
			params.Order = Order(order)
		default:
			return params, &ParamError{"order", "must be 'asc' or 'desc'"}
		}
	}

	if page := values.Get("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 0 {
			return params, &ParamError{"page", "must be a non-negative integer"}
		}
		if n > MaxPage {
			return params, &ParamError{"page", fmt.Sprintf("must be at most %d", MaxPage)}
		}
		params.Page = n
	}

	if limit := values.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > MaxLimit {
			return params, &ParamError{"limit", fmt.Sprintf("must be an integer between 1 and %d", MaxLimit)}
		}
		params.Limit = n
	}

	return params, nil
}

// Offset is the index of the first record on the requested page. An
// offset too large to represent saturates at math.MaxInt, which is past
// the end of any result.
func (p Params) Offset() int {
	if p.Page <= 0 || p.Limit <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Limit {
		return math.MaxInt
	}

	return p.Page * p.Limit
}

// LastPage returns the zero-based index of the final page for the total
// provided. An empty result set still has a single (empty) page 0.
func (p Params) LastPage(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}

	return (total - 1) / p.Limit
}
