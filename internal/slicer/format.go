package slicer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BlankLabel is shown for a missing category value.
const BlankLabel = "(Blank)"

var verbRe = regexp.MustCompile(`%[-+# 0-9.]*[vdsfgeExXqt]`)

var printer = message.NewPrinter(language.English)

// FormatLabel renders a category value with a column format string.
//
// Formats holding a fmt verb are passed to fmt, with decoded numbers
// converted to suit the verb. Numeric patterns such as
// "#,0.00" or "0.0%" set the decimals, thousands grouping and percent
// scaling. Anything else falls back to the default rendering.
func FormatLabel(v interface{}, format string) string {
	if v == nil {
		return BlankLabel
	}
	if verb := verbRe.FindString(format); verb != "" {
		return fmt.Sprintf(format, verbArg(v, verb[len(verb)-1]))
	}
	if f, ok := toFloat(v); ok && format != "" {
		return formatNumber(f, format)
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return BlankLabel
		}
		return s
	case float64:
		return formatNumber(s, "")
	}
	return fmt.Sprint(v)
}

// verbArg converts numeric v for a fmt verb: integer verbs get the value
// truncated to int64, float verbs get a float64.
func verbArg(v interface{}, verb byte) interface{} {
	f, ok := toFloat(v)
	if !ok {
		return v
	}
	switch verb {
	case 'd', 'x', 'X':
		return int64(f)
	case 'f', 'g', 'e', 'E':
		return f
	}
	return v
}

func formatNumber(f float64, pattern string) string {
	percent := strings.HasSuffix(pattern, "%")
	if percent {
		pattern = strings.TrimSuffix(pattern, "%")
		f *= 100
	}
	decimals := 0
	if i := strings.IndexByte(pattern, '.'); i >= 0 {
		for _, c := range pattern[i+1:] {
			if c == '0' || c == '#' {
				decimals++
			}
		}
	} else if pattern == "" && f != float64(int64(f)) {
		decimals = -1
	}
	grouped := strings.Contains(pattern, ",")

	var out string
	switch {
	case decimals < 0:
		out = fmt.Sprint(f)
	case grouped:
		out = printer.Sprintf(fmt.Sprintf("%%.%df", decimals), f)
	default:
		out = fmt.Sprintf("%.*f", decimals, f)
	}
	if percent {
		out += "%"
	}
	return out
}

// toFloat converts the numeric types produced by JSON, YAML and TOML decoding.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
