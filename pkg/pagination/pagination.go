package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page or cursor query can request.
	MaxLimit = 100
)

// Params holds paging inputs from controllers or services.
type Params struct {
	Limit  int
	Offset int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeOffset clamps negative offsets to zero.
func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// EncodeCursor builds a base64 cursor for ascending-ID iteration.
func EncodeCursor(lastID int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(lastID, 10)))
}

// ParseCursor decodes the cursor back into the last seen ID. An empty
// cursor starts iteration from the beginning.
func ParseCursor(value string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return 0, fmt.Errorf("decode cursor: %w", err)
	}
	id, err := strconv.ParseInt(string(decoded), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor id: %w", err)
	}
	if id < 0 {
		return 0, fmt.Errorf("invalid cursor id %d", id)
	}
	return id, nil
}
