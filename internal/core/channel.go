package core

import "fmt"

// ChannelKey identifies the private conversation between exactly two users.
// It is derived, never persisted.
type ChannelKey string

// ChannelKeyFor returns the canonical key for a pair of user IDs.
// The key is order-independent: ChannelKeyFor(a, b) == ChannelKeyFor(b, a).
// It is defined for a == b as well; callers that disallow self-channels
// must reject equal IDs before computing the key.
func ChannelKeyFor(a, b int64) ChannelKey {
	if a > b {
		a, b = b, a
	}
	return ChannelKey(fmt.Sprintf("dm:%d:%d", a, b))
}
