package codec

import "fmt"

// Limit wraps another codec to enforce a maximum allowed payload size
// at Decode time. Encode and EncodeValue are forwarded to Inner unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: protect against oversized/malicious inputs coming from a
// shared backend.
type Limit struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec
	// MaxDecode is the maximum permitted length (in bytes) of the incoming
	// string for Decode/DecodeInto. Longer inputs fail without invoking Inner.
	MaxDecode int
}

var (
	_ Codec        = Limit{}
	_ ValueEncoder = Limit{}
)

func (c Limit) Encode(v any) (string, error) { return c.Inner.Encode(v) }

func (c Limit) EncodeValue(v any) (string, error) { return EncodeValue(c.Inner, v) }

func (c Limit) Decode(s string) (any, error) {
	if err := c.check(s); err != nil {
		return nil, err
	}
	return c.Inner.Decode(s)
}

func (c Limit) DecodeInto(s string, dst any) error {
	if err := c.check(s); err != nil {
		return err
	}
	return c.Inner.DecodeInto(s, dst)
}

func (c Limit) check(s string) error {
	if c.MaxDecode > 0 && len(s) > c.MaxDecode {
		return fmt.Errorf("payload too large: %d > %d", len(s), c.MaxDecode)
	}
	return nil
}
