// Copyright 2026 The Fieldform Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package expr

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the underlying representation a Comparable settled on.
type Kind int

const (
	// KindNone is the "null bottom" design notes §9 calls for: any
	// value that could not be placed on the comparable ladder.
	KindNone Kind = iota
	KindNumber
	KindString
)

// Comparable is the total-order-with-null-bottom encapsulation of the
// dynamic ordering/between coercion ladder from spec.md §4.2 and its
// design notes (§9): "finite number → itself; string → numeric parse
// if finite, else ISO-date parse (epoch-ms) if parseable, else the
// trimmed string; date → epoch-ms; otherwise null".
type Comparable struct {
	Kind Kind
	Num  float64
	Str  string
}

// ToComparable runs the coercion ladder over v.
func ToComparable(v any) Comparable {
	switch t := v.(type) {
	case nil:
		return Comparable{Kind: KindNone}
	case time.Time:
		return Comparable{Kind: KindNumber, Num: float64(t.UnixMilli())}
	case bool:
		return Comparable{Kind: KindNone}
	case string:
		s := strings.TrimSpace(t)
		if f, ok := toFiniteFloat(s); ok {
			return Comparable{Kind: KindNumber, Num: f}
		}
		if ms, ok := parseISODateMillis(s); ok {
			return Comparable{Kind: KindNumber, Num: float64(ms)}
		}
		return Comparable{Kind: KindString, Str: s}
	default:
		if f, ok := numericValue(v); ok {
			return Comparable{Kind: KindNumber, Num: f}
		}
		return Comparable{Kind: KindNone}
	}
}

// Compare returns (-1/0/1, true) when both sides landed on the same
// non-null Kind, otherwise (0, false) — "if either side resolves to
// null, the comparison is false" generalizes cleanly to "if the sides
// aren't of the same comparable kind, the comparison is false".
func Compare(a, b Comparable) (int, bool) {
	if a.Kind == KindNone || b.Kind == KindNone || a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case KindNumber:
		switch {
		case a.Num < b.Num:
			return -1, true
		case a.Num > b.Num:
			return 1, true
		default:
			return 0, true
		}
	case KindString:
		return strings.Compare(a.Str, b.Str), true
	default:
		return 0, false
	}
}

func toFiniteFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// numericValue extracts a float64 from any of Go's numeric kinds,
// as produced either by encoding/json (float64) or by code building
// trees programmatically (int, int64, ...).
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseISODateMillis is the "Date.parse-equivalent" referenced in
// spec.md §4.4/§4.2: it accepts the handful of ISO-8601 layouts a
// JSON-transported date/time answer realistically arrives in.
func parseISODateMillis(s string) (int64, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
