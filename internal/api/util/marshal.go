package util

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// MarshalJSON renders the listing as {total, page, limit, <key>: [...], _links}.
func (list ListDto[T]) MarshalJSON() ([]byte, error) {
	items := list.Items
	if items == nil {
		items = []T{}
	}

	return json.Marshal(map[string]any{
		"total":  list.Total,
		"page":   list.Page,
		"limit":  list.Limit,
		list.Key: items,
		"_links": list.Links,
	})
}

// Date is a request body timestamp which accepts either a calendar date
// (2006-01-02) or a full RFC 3339 timestamp. Calendar dates are taken as
// midnight UTC.
type Date struct{ time.Time }

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		d.Time = t.UTC()
		return nil
	}

	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("date '%s' is not in the form YYYY-MM-DD or RFC 3339", raw)
	}

	d.Time = t
	return nil
}
