package dateutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDate marks date inputs that cannot be parsed into a calendar instant.
var ErrInvalidDate = errors.New("invalid date")

// ISOLayout is the canonical persisted form of every instant: UTC, millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// CurrentlyEmployed is the sentinel end date of an open work period.
const CurrentlyEmployed = "Actualmente trabajando"

// location is the single process-wide display zone. Payroll documents and
// local-calendar bucketing all use this zone; it is set once at startup and
// never per call.
var location = time.UTC

// SetLocation configures the process-wide display zone by IANA name.
// Call once from main before serving requests.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", name, err)
	}
	location = loc
	return nil
}

// Location returns the process-wide display zone.
func Location() *time.Location {
	return location
}

// Parts is the structured date shape accepted from submissions,
// e.g. {"year":2025,"month":1,"day":13}. Month is 1-based.
type Parts struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

var epochMillisRegex = regexp.MustCompile(`^\d+$`)

// stringLayouts are tried in order for free-form date strings.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123,
	time.RFC1123Z,
}

// NormalizeToISO converts a heterogeneous date representation into the
// canonical UTC ISO-8601 string. Accepted shapes: time.Time, Parts, a JSON
// object with year/month/day keys, integer or numeric-string epoch
// milliseconds, and date strings in the usual layouts. Structured parts are
// interpreted as UTC. Anything else fails with ErrInvalidDate.
func NormalizeToISO(input any) (string, error) {
	t, err := parseAny(input)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(ISOLayout), nil
}

// ParseISO parses a previously normalized instant. It accepts anything
// NormalizeToISO accepts, so callers can re-normalize stored values safely.
func ParseISO(input any) (time.Time, error) {
	return parseAny(input)
}

func parseAny(input any) (time.Time, error) {
	switch v := input.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		return v, nil
	case Parts:
		return fromParts(v)
	case *Parts:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: nil parts", ErrInvalidDate)
		}
		return fromParts(*v)
	case map[string]any:
		return fromMap(v)
	case int:
		return fromEpochMillis(int64(v)), nil
	case int64:
		return fromEpochMillis(v), nil
	case float64:
		return fromEpochMillis(int64(v)), nil
	case string:
		return fromString(v)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported input type %T", ErrInvalidDate, input)
	}
}

func fromParts(p Parts) (time.Time, error) {
	if p.Year == 0 || p.Month < 1 || p.Month > 12 || p.Day < 1 || p.Day > 31 {
		return time.Time{}, fmt.Errorf("%w: parts %+v", ErrInvalidDate, p)
	}
	return time.Date(p.Year, time.Month(p.Month), p.Day, p.Hour, p.Minute, p.Second, 0, time.UTC), nil
}

func fromMap(m map[string]any) (time.Time, error) {
	year, okY := intField(m, "year")
	month, okM := intField(m, "month")
	day, okD := intField(m, "day")
	if !okY || !okM || !okD {
		return time.Time{}, fmt.Errorf("%w: object missing year/month/day", ErrInvalidDate)
	}
	hour, _ := intField(m, "hour")
	minute, _ := intField(m, "minute")
	second, _ := intField(m, "second")
	return fromParts(Parts{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second})
}

func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

func fromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func fromString(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidDate)
	}
	if epochMillisRegex.MatchString(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return fromEpochMillis(ms), nil
	}
	for _, layout := range stringLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDay renders a normalized instant as its UTC calendar day.
// Date-only inputs normalize to UTC midnight, so rendering them in the
// display zone would shift them back a day.
func FormatDay(input any) (string, error) {
	t, err := parseAny(input)
	if err != nil {
		return "", err
	}
	return t.UTC().Format("2006-01-02"), nil
}

// FormatLocal renders a normalized instant with the given Go layout in the
// process-wide display zone.
func FormatLocal(input any, layout string) (string, error) {
	t, err := parseAny(input)
	if err != nil {
		return "", err
	}
	return t.In(location).Format(layout), nil
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// SpanishMonth returns the lowercase Spanish name of a month.
func SpanishMonth(m time.Month) string {
	return spanishMonths[int(m)-1]
}

// MonthYearLabel formats an instant as "<mes> de <year>" in the display zone,
// the key format used by entitlement reports.
func MonthYearLabel(m time.Month, year int) string {
	return fmt.Sprintf("%s de %d", SpanishMonth(m), year)
}

// MonthYearDisplay renders an instant as "Mes de Year" (capitalized) in the
// display zone, the form shown on payroll documents.
func MonthYearDisplay(input any) (string, error) {
	t, err := parseAny(input)
	if err != nil {
		return "", err
	}
	local := t.In(location)
	name := SpanishMonth(local.Month())
	return fmt.Sprintf("%s%s de %d", string(name[0]-'a'+'A'), name[1:], local.Year()), nil
}

// MonthYearCompact renders an instant as "MesYear" without separator,
// used in document titles.
func MonthYearCompact(input any) (string, error) {
	t, err := parseAny(input)
	if err != nil {
		return "", err
	}
	local := t.In(location)
	name := SpanishMonth(local.Month())
	return fmt.Sprintf("%s%s%d", string(name[0]-'a'+'A'), name[1:], local.Year()), nil
}
