// Package codec turns caller values into the strings encstore encrypts and
// stores, and back.
//
// JSON is the default and follows Web Storage conventions: strings are stored
// as-is, scalars as their string form, everything structured as JSON. The
// binary codecs (CBOR, Msgpack) encode every value and base64 the result so it
// survives string-only backends.
package codec

// Codec encodes/decodes values to the string form kept in storage.
type Codec interface {
	Encode(v any) (string, error)
	// Decode returns a generic value (maps, slices, float64/int, string, bool, nil).
	Decode(s string) (any, error)
	// DecodeInto decodes into dst, which must be a non-nil pointer.
	DecodeInto(s string, dst any) error
}

// ValueEncoder is implemented by codecs whose Encode is lenient with scalars.
// EncodeValue always produces text that Decode accepts, so a value survives
// a standalone encrypt and decrypt round trip with its type intact.
type ValueEncoder interface {
	EncodeValue(v any) (string, error)
}

// EncodeValue uses c's strict encoding when it has one.
func EncodeValue(c Codec, v any) (string, error) {
	if ve, ok := c.(ValueEncoder); ok {
		return ve.EncodeValue(v)
	}
	return c.Encode(v)
}
