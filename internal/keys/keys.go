package keys

import "strings"

const sep = ":"

// Namespacer maps logical keys to physical storage keys under an optional
// prefix ("<prefix>:<key>") and back. The zero value has no prefix.
type Namespacer struct {
	prefix string
}

func New(prefix string) Namespacer { return Namespacer{prefix: prefix} }

func (n Namespacer) Prefix() string { return n.prefix }

// Physical returns the storage key for logical key k.
func (n Namespacer) Physical(k string) string {
	if n.prefix == "" {
		return k
	}
	return n.prefix + sep + k
}

// Strip removes "<prefix>:" from a physical key. Keys outside the namespace
// are returned unchanged.
func (n Namespacer) Strip(k string) string {
	if n.prefix == "" {
		return k
	}
	return strings.TrimPrefix(k, n.prefix+sep)
}

// Includes reports whether physical key k mentions the prefix anywhere.
// An empty prefix is included in every key.
func (n Namespacer) Includes(k string) bool {
	return strings.Contains(k, n.prefix)
}
