package query_test

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/hbomb79/Reel/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	id     string
	title  string
	rating *float64
	added  time.Time
}

func ptr[T any](v T) *T { return &v }

var schema = query.Schema[record]{
	DefaultSort:  "added",
	DefaultOrder: query.Desc,
	ID:           func(r record) string { return r.id },
	Fields: map[string]query.Field[record]{
		"title": {Kind: query.StringField, String: func(r record) string { return r.title }, DefaultOrder: query.Asc},
		"rating": {Kind: query.NumberField, Number: func(r record) float64 {
			if r.rating == nil {
				return 0
			}
			return *r.rating
		}},
		"added": {Kind: query.TimeField, Time: func(r record) time.Time { return r.added }},
	},
}

func fixtures() []record {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []record{
		{"r_001", "Zodiac", ptr(8.0), base.Add(1 * time.Hour)},
		{"r_002", "amélie", nil, base.Add(5 * time.Hour)},
		{"r_003", "Alien", ptr(9.5), base.Add(3 * time.Hour)},
		{"r_004", "Élite", ptr(8.0), base.Add(2 * time.Hour)},
		{"r_005", "Brazil", ptr(-1.0), base.Add(4 * time.Hour)},
	}
}

func ids(records []record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.id
	}
	return out
}

func TestParseParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		params, err := query.ParseParams(url.Values{}, schema)
		require.NoError(t, err)
		assert.Equal(t, query.Params{Sort: "added", Order: query.Desc, Page: 0, Limit: 20}, params)
	})

	t.Run("field default order", func(t *testing.T) {
		params, err := query.ParseParams(url.Values{"sort": {"title"}}, schema)
		require.NoError(t, err)
		assert.Equal(t, query.Asc, params.Order)
	})

	t.Run("explicit order wins", func(t *testing.T) {
		params, err := query.ParseParams(url.Values{"sort": {"title"}, "order": {"DESC"}, "page": {"3"}, "limit": {"5"}}, schema)
		require.NoError(t, err)
		assert.Equal(t, query.Params{Sort: "title", Order: query.Desc, Page: 3, Limit: 5}, params)
	})

	invalid := []url.Values{
		{"sort": {"synopsis"}},
		{"order": {"sideways"}},
		{"page": {"-1"}},
		{"page": {"one"}},
		{"page": {"1000000001"}},
		{"page": {"9223372036854775807"}},
		{"limit": {"0"}},
		{"limit": {"101"}},
	}
	for _, values := range invalid {
		t.Run("rejects "+values.Encode(), func(t *testing.T) {
			_, err := query.ParseParams(values, schema)
			var paramErr *query.ParamError
			assert.ErrorAs(t, err, &paramErr)
		})
	}
}

func TestApply_Sorting(t *testing.T) {
	tests := []struct {
		summary  string
		sort     string
		order    query.Order
		expected []string
	}{
		{"locale aware strings", "title", query.Asc, []string{"r_003", "r_002", "r_005", "r_004", "r_001"}},
		{"missing numbers are zero", "rating", query.Asc, []string{"r_005", "r_002", "r_001", "r_004", "r_003"}},
		{"ties break on id under desc", "rating", query.Desc, []string{"r_003", "r_001", "r_004", "r_002", "r_005"}},
		{"chronological", "added", query.Desc, []string{"r_002", "r_005", "r_003", "r_004", "r_001"}},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			res := query.Apply(fixtures(), nil, schema, query.Params{Sort: test.sort, Order: test.order, Limit: 20})
			assert.Equal(t, test.expected, ids(res.Items))
			assert.Equal(t, 5, res.Total)
		})
	}
}

func TestApply_FilterCountsBeforeSlicing(t *testing.T) {
	match := func(r record) bool { return r.rating != nil && *r.rating >= 8 }
	res := query.Apply(fixtures(), match, schema, query.Params{Sort: "title", Order: query.Asc, Page: 0, Limit: 2})

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"r_003", "r_004"}, ids(res.Items))
}

func TestApply_PagesAreDisjointAndComplete(t *testing.T) {
	all := query.Apply(fixtures(), nil, schema, query.Params{Sort: "title", Order: query.Asc, Limit: 100})

	var concatenated []string
	for page := 0; page < 3; page++ {
		res := query.Apply(fixtures(), nil, schema, query.Params{Sort: "title", Order: query.Asc, Page: page, Limit: 2})
		assert.Equal(t, all.Total, res.Total)
		concatenated = append(concatenated, ids(res.Items)...)
	}

	assert.Equal(t, ids(all.Items), concatenated)
}

func TestApply_OutOfRangePage(t *testing.T) {
	res := query.Apply(fixtures(), nil, schema, query.Params{Sort: "title", Order: query.Asc, Page: 9, Limit: 2})
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 5, res.Total)

	for _, page := range []int{math.MaxInt, math.MaxInt / 2, math.MaxInt/2 + 1} {
		res := query.Apply(fixtures(), nil, schema, query.Params{Sort: "title", Order: query.Asc, Page: page, Limit: 2})
		assert.Empty(t, res.Items, "page %d", page)
		assert.Equal(t, 5, res.Total)
	}
}

func TestParams_OffsetSaturates(t *testing.T) {
	assert.Equal(t, 40, query.Params{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 0, query.Params{Page: -3, Limit: 20}.Offset())
	assert.Equal(t, math.MaxInt, query.Params{Page: math.MaxInt, Limit: 2}.Offset())
	assert.Equal(t, 100*query.MaxPage, query.Params{Page: query.MaxPage, Limit: query.MaxLimit}.Offset())
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := fixtures()
	query.Apply(in, nil, schema, query.Params{Sort: "title", Order: query.Asc, Limit: 10})
	assert.Equal(t, ids(fixtures()), ids(in))
}

func TestLastPage(t *testing.T) {
	p := query.Params{Limit: 2}
	assert.Equal(t, 0, p.LastPage(0))
	assert.Equal(t, 0, p.LastPage(2))
	assert.Equal(t, 1, p.LastPage(3))
	assert.Equal(t, 2, p.LastPage(5))
}
