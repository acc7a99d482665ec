// Package export writes parsed matches as CSV, JSON or PostgreSQL rows.
package export

import (
	"math"
	"strconv"
	"time"
)

// floatPtr turns NaN into nil so encoders emit null.
func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// formatCell renders one table cell for CSV. NaN and nil become empty.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}
