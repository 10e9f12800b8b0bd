// Package encstore is an encrypting key-value facade. Values are serialized
// (JSON by default), encrypted and written to a string store; reads reverse
// the steps. The API keeps the shape of a plain key-value store.
//
// Components:
//   - backend.Backend: string store (memory, bbolt, Redis, BigCache,
//     Ristretto, NATS KV). Optional Lister/Indexer enable key enumeration.
//   - crypt.Provider: resolved by name from a registry (AES-GCM by default).
//   - codec.Codec: value <-> string serialization.
//   - NotifyHandler: receives one ChangeEvent per operation; batch calls emit
//     a single aggregate event.
//
// Keys:
//
//	<prefix>:<key>  - with Options.Prefix set
//	<key>           - without
//
// Usage:
//
//	st, err := encstore.New("a-long-secret", encstore.Options{
//		Prefix:  "app",
//		Backend: memory.New(),
//	})
//	_ = st.SetItem(ctx, "user", User{Name: "ann"})
//	v, ok, err := st.GetItem(ctx, "user") // map[string]any{"name":"ann"}
package encstore
