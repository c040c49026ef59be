package adapter

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var nonDigits = regexp.MustCompile(`\D+`)

// NormalizeContactID drops an "@domain" suffix and every non-digit character.
func NormalizeContactID(raw string) string {
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		raw = raw[:at]
	}
	return nonDigits.ReplaceAllString(raw, "")
}

// str renders a scalar JSON value as text. Arrays yield their first element,
// objects yield nothing.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case []any:
		if len(t) == 0 {
			return ""
		}
		return str(t[0])
	case map[string]any:
		return ""
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return ""
		}
		return s
	}
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func get(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// number reports whether v is a JSON number and returns it as an integer.
func number(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// flag returns the boolean value of v and whether it was present at all.
func flag(v any) (bool, bool) {
	if v == nil {
		return false, false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// parseTime accepts epoch millis, as a number or a numeric string, or an
// ISO-8601 timestamp.
func parseTime(v any) (time.Time, bool) {
	if ms, ok := number(v); ok {
		return time.UnixMilli(ms).UTC(), true
	}
	s := strings.TrimSpace(str(v))
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// RawPhone returns the sender as the provider wrote it, for audit rows.
func RawPhone(body map[string]any) string {
	return firstNonBlank(str(body["participant"]), str(body["phone"]), str(body["from"]))
}

// InstanceID returns the provider instance the callback belongs to.
func InstanceID(body map[string]any) string {
	return strings.TrimSpace(str(body["instanceId"]))
}
