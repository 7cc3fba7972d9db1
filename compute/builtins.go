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

package compute

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

const minutesPerDay = 24 * 60

// parseMinutesSinceMidnight implements the time-parsing rule shared by
// midpoint/duration/normalize_time (spec.md §4.3): a string must match
// ^\d{1,2}:\d{2}(:\d{2})?$ (seconds contribute fractional minutes); a
// numeric input is interpreted directly as minutes since midnight.
// Anything else yields (0, false).
func parseMinutesSinceMidnight(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		m := timePattern.FindStringSubmatch(strings.TrimSpace(t))
		if m == nil {
			return 0, false
		}
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		minutes, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, false
		}
		seconds := 0.0
		if m[3] != "" {
			seconds, err = strconv.ParseFloat(m[3], 64)
			if err != nil {
				return 0, false
			}
		}
		return float64(hours*60+minutes) + seconds/60.0, true
	default:
		if f, ok := numericValue(v); ok {
			return f, true
		}
		return 0, false
	}
}

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
	}
	return 0, false
}

// modMinutes reduces m into [0, 1440) regardless of sign.
func modMinutes(m float64) float64 {
	r := math.Mod(m, minutesPerDay)
	if r < 0 {
		r += minutesPerDay
	}
	return r
}

// formatHHMM renders minutes-since-midnight (already reduced to
// [0,1440)) as a zero-padded "HH:MM" string.
func formatHHMM(minutes float64) string {
	total := int(minutes + 0.5) // round to nearest minute
	total = total % minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	h := total / 60
	m := total % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// builtinNormalizeTime implements normalize_time(x).
func builtinNormalizeTime(args []any) any {
	if len(args) != 1 {
		return nil
	}
	minutes, ok := parseMinutesSinceMidnight(args[0])
	if !ok {
		return nil
	}
	return formatHHMM(modMinutes(minutes))
}

// builtinDuration implements duration(start, end): integer minutes,
// wrapping past midnight when end < start.
func builtinDuration(args []any) any {
	if len(args) != 2 {
		return nil
	}
	start, ok1 := parseMinutesSinceMidnight(args[0])
	end, ok2 := parseMinutesSinceMidnight(args[1])
	if !ok1 || !ok2 {
		return nil
	}
	d := end - start
	if d < 0 {
		d += minutesPerDay
	}
	return int(d + 0.5)
}

// builtinMidpoint implements midpoint(start, end): the time at
// start + (positive-wrapped interval)/2, modulo 24h, already rendered
// in canonical HH:MM form (so normalize_time(midpoint(...)) is a
// no-op — invariant 5, spec.md §8).
func builtinMidpoint(args []any) any {
	if len(args) != 2 {
		return nil
	}
	start, ok1 := parseMinutesSinceMidnight(args[0])
	end, ok2 := parseMinutesSinceMidnight(args[1])
	if !ok1 || !ok2 {
		return nil
	}
	interval := end - start
	if interval < 0 {
		interval += minutesPerDay
	}
	mid := start + interval/2
	return formatHHMM(modMinutes(mid))
}

// builtinAddDays implements add_days(dateISO, days): UTC arithmetic,
// days truncated to an integer, rendered as YYYY-MM-DD.
func builtinAddDays(args []any) any {
	if len(args) != 2 {
		return nil
	}
	dateStr, ok := args[0].(string)
	if !ok {
		return nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return nil
	}
	daysF, ok := numericValue(args[1])
	if !ok {
		return nil
	}
	days := int(daysF) // truncate toward zero, per spec.md §4.3
	return t.UTC().AddDate(0, 0, days).Format("2006-01-02")
}

// coerceFiniteNumber is the arithmetic argument rule: each arg must
// coerce to a finite number or the whole result is null.
func coerceFiniteNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return numericValue(v)
	}
}

func evalArith(op Arith, args []any) any {
	if len(args) == 0 {
		return nil
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		f, ok := coerceFiniteNumber(a)
		if !ok {
			return nil
		}
		nums[i] = f
	}
	switch op {
	case ArithAdd:
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return sum
	case ArithMultiply:
		prod := 1.0
		for _, n := range nums {
			prod *= n
		}
		return prod
	case ArithSubtract:
		result := nums[0]
		for _, n := range nums[1:] {
			result -= n
		}
		return result
	case ArithDivide:
		result := nums[0]
		for _, n := range nums[1:] {
			if n == 0 {
				return nil
			}
			result /= n
		}
		return result
	default:
		return nil
	}
}

func evalFunc(fn Function, args []any) any {
	switch fn {
	case FuncNormalizeTime:
		return builtinNormalizeTime(args)
	case FuncDuration:
		return builtinDuration(args)
	case FuncMidpoint:
		return builtinMidpoint(args)
	case FuncAddDays:
		return builtinAddDays(args)
	default:
		return nil
	}
}
