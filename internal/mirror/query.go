package mirror

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Filter matches documents field by field. A slice value matches any of
// its elements; any other value must be equal.
type Filter map[string]any

type Order struct {
	Field string
	Desc  bool
}

// Query returns the documents of col that match f, sorted by order when
// order.Field is set.
func (c *Client) Query(col Collection, f Filter, order Order) ([]Doc, error) {
	docs, err := c.All(col)
	if err != nil {
		return nil, err
	}
	norm, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}

	var out []Doc
	for _, d := range docs {
		if norm.matches(d) {
			out = append(out, d)
		}
	}

	if order.Field != "" {
		sort.SliceStable(out, func(i, j int) bool {
			cmp := compare(out[i][order.Field], out[j][order.Field])
			if order.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	return out, nil
}

func normalizeFilter(f Filter) (Filter, error) {
	if len(f) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	var norm Filter
	return norm, json.Unmarshal(data, &norm)
}

func (f Filter) matches(d Doc) bool {
	for k, want := range f {
		got := d[k]
		if options, ok := want.([]any); ok {
			if _, isList := got.([]any); !isList {
				if !containsValue(options, got) {
					return false
				}
				continue
			}
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func containsValue(options []any, v any) bool {
	for _, o := range options {
		if reflect.DeepEqual(o, v) {
			return true
		}
	}
	return false
}

// compare orders JSON scalars: nil first, then numbers, strings and bools
// by value. Values of different kinds compare by kind.
func compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case bool:
		y := b.(bool)
		if x != y {
			if !x {
				return -1
			}
			return 1
		}
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	}
	return 4
}
