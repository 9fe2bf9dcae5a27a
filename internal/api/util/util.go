package util

import (
	"time"

	"github.com/hbomb79/Reel/internal/hateoas"
	"github.com/hbomb79/Reel/internal/query"
)

// ListDto is the envelope for every paginated listing. The items are
// marshalled under the key provided to NewListDto.
type ListDto[T any] struct {
	Total int
	Page  int
	Limit int
	Key   string
	Items []T
	Links hateoas.Links
}

func NewListDto[T any](key string, result query.Result[T], params query.Params, links hateoas.Links) ListDto[T] {
	return ListDto[T]{
		Total: result.Total,
		Page:  params.Page,
		Limit: params.Limit,
		Key:   key,
		Items: result.Items,
		Links: links,
	}
}

// QueryExtras merges the sort order of params with any filters, for
// carrying in to pagination links.
func QueryExtras(params query.Params, filters map[string]string) map[string]string {
	extra := make(map[string]string, len(filters)+2)
	for k, v := range filters {
		extra[k] = v
	}
	extra["sort"] = params.Sort
	extra["order"] = string(params.Order)

	return extra
}

// ApplyConversion applies a converter function to each of the models
// provided to this function. The returned value is a slice which
// has been converted to the new values based on the returned value
// from the converter. A nil slice converts to an empty one.
func ApplyConversion[T any, K any](models []T, converter func(T) K) []K {
	dtos := make([]K, 0, len(models))
	for _, v := range models {
		dtos = append(dtos, converter(v))
	}

	return dtos
}

// ConvertList converts the items of a listing, keeping the pagination
// metadata intact.
func ConvertList[T any, K any](list ListDto[T], converter func(T) K) ListDto[K] {
	return ListDto[K]{
		Total: list.Total,
		Page:  list.Page,
		Limit: list.Limit,
		Key:   list.Key,
		Items: ApplyConversion(list.Items, converter),
		Links: list.Links,
	}
}

// NotNilOrDefault expects a pointer to some type. If the pointer is
// nil, then the dflt value is returned. If the pointer is NOT nil, then
// it is dereferenced and the concrete value is returned.
func NotNilOrDefault[T any](maybe *T, dflt T) T {
	if maybe == nil {
		return dflt
	}

	return *maybe
}

// TimePtr unwraps an optional Date from a request body.
func TimePtr(date *Date) *time.Time {
	if date == nil {
		return nil
	}

	t := date.Time
	return &t
}
