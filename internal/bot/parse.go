package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLineArg extracts a 1-based cart line number from command arguments.
func ParseLineArg(args string) (int, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("line number is required")
	}
	n, err := strconv.Atoi(strings.Fields(s)[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid line number %q", s)
	}
	return n, nil
}

// ParseQtyArgs extracts a cart line number and a new quantity.
// Format: <line> <quantity>
func ParseQtyArgs(args string) (int, int, error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("usage: /qty <line> <quantity>")
	}
	line, err := ParseLineArg(parts[0])
	if err != nil {
		return 0, 0, err
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil || qty < 0 {
		return 0, 0, fmt.Errorf("invalid quantity %q", parts[1])
	}
	return line, qty, nil
}

// FirstArg returns the first whitespace-separated argument, if any.
func FirstArg(args string) (string, bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}
