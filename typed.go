package encstore

import "context"

// GetAs reads key into a value of type T using the storage codec.
// A stored plain string decodes into T=string even when it is not valid
// for the codec.
//
//	u, ok, err := encstore.GetAs[User](ctx, st, "user:1")
func GetAs[T any](ctx context.Context, s Storage, key string, opts ...CallOption) (T, bool, error) {
	var v T
	ok, err := s.GetItemInto(ctx, key, &v, opts...)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// DecryptAs is the typed form of Storage.DecryptValue.
func DecryptAs[T any](s Storage, payload string) (T, error) {
	var v T
	if err := s.DecryptValueInto(payload, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
