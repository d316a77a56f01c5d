package postgrest

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseContentRange returns the total from a Content-Range header of the
// form "a-b/N" or "*/N". known is false when the total is "*" or the
// header is empty.
func ParseContentRange(header string) (total int, known bool, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false, nil
	}

	_, t, ok := strings.Cut(header, "/")
	if !ok {
		return 0, false, fmt.Errorf("malformed content range: %q", header)
	}
	if t == "*" {
		return 0, false, nil
	}

	total, err = strconv.Atoi(t)
	if err != nil || total < 0 {
		return 0, false, fmt.Errorf("malformed content range total: %q", header)
	}
	return total, true, nil
}
