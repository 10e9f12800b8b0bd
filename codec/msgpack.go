package codec

import (
	"encoding/base64"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a Codec that serializes values using vmihailenco/msgpack/v5,
// stored as standard base64. The zero value is ready to use.
//
// Msgpack is compact and fast; be mindful of struct tag differences vs JSON.
// Use `msgpack:"fieldName"` tags if you need explicit control. Generic
// decodes keep msgpack's integer widths (int8, uint16, ...), so prefer
// DecodeInto with a concrete type.
type Msgpack struct{}

var _ Codec = Msgpack{}

func (Msgpack) Encode(v any) (string, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (m Msgpack) Decode(s string) (any, error) {
	var v any
	err := m.DecodeInto(s, &v)
	return v, err
}

func (Msgpack) DecodeInto(s string, dst any) error {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(b, dst)
}
