package priority

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is the human-readable name of a priority ordinal.
type Category string

const (
	Urgent Category = "Urgent"
	High   Category = "High"
	Medium Category = "Medium"
	Low    Category = "Low"
)

// Key is the entity field holding the priority.
const Key = "priority"

var byOrdinal = map[int]Category{
	1: Urgent,
	2: High,
	3: Medium,
	4: Low,
}

var byCategory = map[Category]int{
	Urgent: 1,
	High:   2,
	Medium: 3,
	Low:    4,
}

// FromOrdinal maps 1..4 to Urgent..Low. Any other value is undefined and
// returns ("", false).
func FromOrdinal(n int) (Category, bool) {
	c, ok := byOrdinal[n]
	return c, ok
}

// FromText maps a category name to its ordinal. The first letter is
// upper-cased and the rest lower-cased before lookup, so "urgent" and
// "URGENT" both resolve. Unknown text returns (0, false).
func FromText(s string) (int, bool) {
	n, ok := byCategory[Category(normalize(s))]
	return n, ok
}

func normalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// ProjectEntity returns a shallow copy of entity whose priority ordinal is
// replaced by its category. Entities without a priority, or with a value
// that is not an ordinal in 1..4, are copied unchanged. entity is not modified.
func ProjectEntity(entity map[string]any) map[string]any {
	if entity == nil {
		return nil
	}
	out := make(map[string]any, len(entity))
	for k, v := range entity {
		out[k] = v
	}
	raw, ok := entity[Key]
	if !ok {
		return out
	}
	if n, ok := ordinal(raw); ok {
		if c, ok := FromOrdinal(n); ok {
			out[Key] = string(c)
		}
	}
	return out
}

// ProjectEntities applies ProjectEntity to every element, keeping order.
func ProjectEntities(entities []map[string]any) []map[string]any {
	out := make([]map[string]any, len(entities))
	for i, e := range entities {
		out[i] = ProjectEntity(e)
	}
	return out
}

func ordinal(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float32:
		return integral(float64(n))
	case float64:
		return integral(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func integral(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

// Description is the help text used in tool schemas.
func Description() string {
	return "Task priority from 1 (urgent) to 4 (low)"
}

// ParseArgument accepts a tool argument that is either an ordinal 1..4 or a
// category name, and returns the ordinal.
func ParseArgument(v any) (int, error) {
	switch a := v.(type) {
	case string:
		if n, ok := FromText(a); ok {
			return n, nil
		}
		return 0, fmt.Errorf("invalid priority %q: must be one of Urgent, High, Medium, Low", a)
	default:
		n, ok := ordinal(v)
		if !ok {
			return 0, fmt.Errorf("invalid priority %v: must be a number from 1 to 4 or a priority name", v)
		}
		if _, ok := FromOrdinal(n); !ok {
			return 0, fmt.Errorf("invalid priority %d: must be between 1 and 4", n)
		}
		return n, nil
	}
}
