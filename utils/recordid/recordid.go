package recordid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
	entropyMu   sync.Mutex
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

func generate(prefix string) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return prefix + "_" + strings.ToLower(id.String())
}

// NewMessageID returns a msg_* ULID string.
func NewMessageID() string {
	return generate("msg")
}

// NewConversationID returns a conv_* ULID string.
func NewConversationID() string {
	return generate("conv")
}

// IsValid reports whether the string is a prefixed ULID.
func IsValid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// Parse strips the prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '_'); idx >= 0 {
		value = value[idx+1:]
	}
	return ulid.Parse(value)
}
