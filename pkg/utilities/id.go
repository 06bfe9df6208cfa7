package utilities

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewSnowflakeID generates a snowflake ID string using the node ID from
// SNOWFLAKE_NODE (default 1). The node is created once per process so IDs
// stay monotonic. If the node cannot be initialized a KSUID is returned.
func NewSnowflakeID() string {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64); err == nil {
			nodeID = v
		}
		node, _ = snowflake.NewNode(nodeID)
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}

// NewNumericID returns up to length (max 32) digits taken from the current
// date followed by a random UUID. It has low entropy and a predictable
// prefix: use it for record identifiers, never for credentials.
func NewNumericID(length int) string {
	if length > 32 {
		length = 32
	}
	if length <= 0 {
		return ""
	}
	digits := onlyDigits(time.Now().Format("2006-01-02") + uuid.NewString())
	for len(digits) < length {
		digits += onlyDigits(uuid.NewString())
	}
	if len(digits) > length {
		digits = digits[:length]
	}
	return digits
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
