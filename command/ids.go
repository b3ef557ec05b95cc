package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedRange is returned for point lists that are neither a single id
// nor a two-ended range.
var ErrMalformedRange = errors.New("command: malformed point range")

var rangeSeparator = regexp.MustCompile(`\.{2,3}`)

// ParseIDs expands "p3..p6", "6...3", "p 4" and similar into point ids.
// Ranges are inclusive on both ends whatever the separator length, and
// always ascending.
func ParseIDs(text string) ([]int, error) {
	raw := strings.ToLower(strings.TrimSpace(text))
	if !strings.Contains(raw, "..") {
		id, err := parseRef(raw)
		if err != nil {
			return nil, err
		}
		return []int{id}, nil
	}

	parts := rangeSeparator.Split(raw, -1)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRange, text)
	}
	start, err := parseRef(parts[0])
	if err != nil {
		return nil, err
	}
	end, err := parseRef(parts[1])
	if err != nil {
		return nil, err
	}
	lo, hi := min(start, end), max(start, end)
	ids := make([]int, 0, hi-lo+1)
	for id := lo; id <= hi; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}

func parseRef(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "p"))
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedRange, s)
	}
	return id, nil
}

// parseIDList expands every item of a comma separated list body (the text
// between the brackets).
func parseIDList(body string) ([]int, error) {
	if strings.TrimSpace(body) == "" {
		return []int{}, nil
	}
	var ids []int
	for _, item := range strings.Split(body, ",") {
		expanded, err := ParseIDs(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, expanded...)
	}
	return ids, nil
}
