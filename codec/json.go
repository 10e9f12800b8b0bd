package codec

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// JSON is the default codec. The zero value is ready to use.
//
// Encode rules:
//   - nil => "null"
//   - strings (including named string types) are kept verbatim
//   - bools and numbers => their string form; NaN and ±Inf => "NaN", "Infinity", "-Infinity"
//   - proto.Message => protojson
//   - anything else => encoding/json
//
// Decode parses JSON into generic values (objects become map[string]any,
// numbers float64). Plain strings are not JSON and fail to decode; callers
// that stored raw strings fall back to the raw text.
type JSON struct{}

var (
	_ Codec        = JSON{}
	_ ValueEncoder = JSON{}
)

func (JSON) Encode(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case proto.Message:
		b, err := protojson.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeValue is Encode without the scalar shortcuts: strings are quoted and
// non-finite floats become null, the way JSON.stringify writes them.
func (JSON) EncodeValue(v any) (string, error) {
	if m, ok := v.(proto.Message); ok {
		b, err := protojson.Marshal(m)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		if f := rv.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return "null", nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (JSON) Decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (JSON) DecodeInto(s string, dst any) error {
	if m, ok := dst.(proto.Message); ok {
		return protojson.Unmarshal([]byte(s), m)
	}
	return json.Unmarshal([]byte(s), dst)
}

func formatFloat(f float64) (string, error) {
	switch {
	case math.IsNaN(f):
		return "NaN", nil
	case math.IsInf(f, 1):
		return "Infinity", nil
	case math.IsInf(f, -1):
		return "-Infinity", nil
	}
	// encoding/json uses the shortest ES6 number form
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
