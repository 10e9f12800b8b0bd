package encstore

// ChangeType names the operation a ChangeEvent reports.
type ChangeType string

const (
	ChangeSet            ChangeType = "set"
	ChangeGet            ChangeType = "get"
	ChangeSetMultiple    ChangeType = "setMultiple"
	ChangeGetMultiple    ChangeType = "getMultiple"
	ChangeRemove         ChangeType = "remove"
	ChangeRemoveMultiple ChangeType = "removeMultiple"
	ChangeClear          ChangeType = "clear"
	ChangeLength         ChangeType = "length"
	ChangeKey            ChangeType = "key"
)

// ChangeEvent describes one logical operation outcome.
//
// Value per type:
//
//	set            serialized (pre-encryption) string
//	get            returned value, nil when missing
//	setMultiple    []string of serialized values, in Keys order
//	getMultiple    *Items
//	length         int
//	key            string, nil when not found
type ChangeEvent struct {
	Type  ChangeType
	Key   string   // single-key operations
	Keys  []string // batch operations, in order
	Value any
	Index int // key events only
}

// NotifyHandler receives events synchronously on the calling goroutine.
// Implementations should be cheap; see notify/async for a buffered sink.
type NotifyHandler func(ChangeEvent)

// Fanout calls every non-nil handler in order.
func Fanout(handlers ...NotifyHandler) NotifyHandler {
	hs := make([]NotifyHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	switch len(hs) {
	case 0:
		return nil
	case 1:
		return hs[0]
	}
	return func(ev ChangeEvent) {
		for _, h := range hs {
			h(ev)
		}
	}
}
