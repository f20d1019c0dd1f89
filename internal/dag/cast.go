package dag

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// castKind is the conversion selected for a parameter type string
type castKind int

const (
	castString castKind = iota
	castInt
	castFloat
	castBool
	castList
	castDict
)

var ErrCast = errors.New("cannot cast value")

var (
	truthy = []string{"true", "1", "yes", "on"}

	castRules = []struct {
		markers []string
		kind    castKind
	}{
		{[]string{"int"}, castInt},
		{[]string{"float"}, castFloat},
		{[]string{"bool"}, castBool},
		{[]string{"list", "sequence"}, castList},
		{[]string{"dict"}, castDict},
	}
)

// Cast converts a parameter value according to its declared type string,
// returning the JSON encoding of the result. The type is matched by
// substring after lowercasing and dropping any "typing." qualifier, and
// the first matching rule applies: int, float, bool, list or sequence,
// dict, and otherwise string. ErrCast is returned when the value cannot be
// represented as the selected type
func Cast(v gjson.Result, typ string) (json.RawMessage, error) {
	switch kindOf(typ) {
	case castInt:
		return toInt(v)
	case castFloat:
		return toFloat(v)
	case castBool:
		return toBool(v), nil
	case castList:
		return toList(v), nil
	case castDict:
		return toDict(v), nil
	default:
		return toString(v)
	}
}

func kindOf(typ string) castKind {
	t := strings.ReplaceAll(strings.ToLower(typ), "typing.", "")
	for _, rule := range castRules {
		for _, m := range rule.markers {
			if strings.Contains(t, m) {
				return rule.kind
			}
		}
	}
	return castString
}

func toInt(v gjson.Result) (json.RawMessage, error) {
	switch v.Type {
	case gjson.True:
		return json.RawMessage("1"), nil
	case gjson.False:
		return json.RawMessage("0"), nil
	case gjson.String:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v.Str), 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q to int", ErrCast, v.Str)
		}
		return json.RawMessage(n.String()), nil
	case gjson.Number:
		if n, ok := new(big.Int).SetString(v.Raw, 10); ok {
			return json.RawMessage(n.String()), nil
		}
		f, ok := new(big.Float).SetString(v.Raw)
		if !ok || f.IsInf() {
			return nil, fmt.Errorf("%w: %s to int", ErrCast, v.Raw)
		}
		n, _ := f.Int(nil)
		return json.RawMessage(n.String()), nil
	default:
		return nil, fmt.Errorf("%w: %s to int", ErrCast, v.Raw)
	}
}

func toFloat(v gjson.Result) (json.RawMessage, error) {
	var f float64
	switch v.Type {
	case gjson.True:
		f = 1
	case gjson.False:
		f = 0
	case gjson.Number:
		f = v.Num
	case gjson.String:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q to float", ErrCast, v.Str)
		}
	default:
		return nil, fmt.Errorf("%w: %s to float", ErrCast, v.Raw)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("%w: %s is not finite", ErrCast, v.Raw)
	}
	return json.RawMessage(formatFloat(f)), nil
}

func toBool(v gjson.Result) json.RawMessage {
	var s string
	switch v.Type {
	case gjson.True:
		return json.RawMessage("true")
	case gjson.False:
		return json.RawMessage("false")
	case gjson.String:
		s = v.Str
	case gjson.Number:
		s = v.Raw
	}
	if slices.Contains(truthy, strings.ToLower(s)) {
		return json.RawMessage("true")
	}
	return json.RawMessage("false")
}

func toList(v gjson.Result) json.RawMessage {
	if v.IsArray() {
		return json.RawMessage(v.Raw)
	}
	if isFalsy(v) {
		return json.RawMessage("[]")
	}
	return json.RawMessage("[" + v.Raw + "]")
}

func toDict(v gjson.Result) json.RawMessage {
	if v.IsObject() {
		return json.RawMessage(v.Raw)
	}
	return json.RawMessage("{}")
}

func toString(v gjson.Result) (json.RawMessage, error) {
	switch v.Type {
	case gjson.String:
		return json.RawMessage(v.Raw), nil
	case gjson.True:
		return encodeString("True")
	case gjson.False:
		return encodeString("False")
	default:
		return encodeString(v.Raw)
	}
}

func isFalsy(v gjson.Result) bool {
	switch v.Type {
	case gjson.False, gjson.Null:
		return true
	case gjson.String:
		return v.Str == ""
	case gjson.Number:
		return v.Num == 0
	case gjson.JSON:
		return v.IsObject() && len(v.Map()) == 0
	default:
		return false
	}
}

// formatFloat renders a float the way Python's repr does, so integral
// values keep their decimal point
func formatFloat(f float64) string {
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
