package scans

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const maxVerdictDepth = 6

// ParseVerdict extracts a Verdict from raw engine output. The result shape
// varies between engine versions (the verdict object may sit at the top level
// or nested under a wrapper key), so this walks the document and takes the
// first object that carries the expected fields. Try to extract with best
// effort; absent or wrongly typed required fields yield ErrMalformedVerdict.
func ParseVerdict(data []byte) (*Verdict, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}

	m := findVerdictObject(root, 0)
	if m == nil {
		return nil, fmt.Errorf("%w: no verdict object in engine output", ErrMalformedVerdict)
	}

	v := &Verdict{}

	cls, ok := asString(m["classification"])
	if !ok || cls == "" {
		return nil, fmt.Errorf("%w: missing classification", ErrMalformedVerdict)
	}
	v.Classification = cls

	rating, ok := asInt(m["sensitivity_rating"])
	if !ok {
		return nil, fmt.Errorf("%w: missing sensitivity_rating", ErrMalformedVerdict)
	}
	if rating < 0 || rating > 10 {
		return nil, fmt.Errorf("%w: sensitivity_rating %d out of range", ErrMalformedVerdict, rating)
	}
	v.SensitivityRating = rating

	del, ok := asBool(m["should_be_deleted"])
	if !ok {
		return nil, fmt.Errorf("%w: missing should_be_deleted", ErrMalformedVerdict)
	}
	v.ShouldBeDeleted = del

	if s, ok := asString(m["deletion_date"]); ok && s != "" {
		t, err := parseVerdictTime(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad deletion_date %q", ErrMalformedVerdict, s)
		}
		v.DeletionDate = &t
	}
	// A deletion recommendation without a date cannot be scheduled.
	if v.ShouldBeDeleted && v.DeletionDate == nil {
		return nil, fmt.Errorf("%w: should_be_deleted without deletion_date", ErrMalformedVerdict)
	}

	if s, ok := asString(m["reasoning"]); ok {
		v.Reasoning = s
	}

	return v, nil
}

// findVerdictObject walks maps and arrays depth-first looking for an object
// that has both required verdict keys.
func findVerdictObject(node any, depth int) map[string]any {
	if depth > maxVerdictDepth {
		return nil
	}
	switch n := node.(type) {
	case map[string]any:
		if _, ok := n["classification"]; ok {
			if _, ok := n["sensitivity_rating"]; ok {
				return n
			}
		}
		for _, child := range n {
			if m := findVerdictObject(child, depth+1); m != nil {
				return m
			}
		}
	case []any:
		for _, child := range n {
			if m := findVerdictObject(child, depth+1); m != nil {
				return m
			}
		}
	}
	return nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return false, false
}

func parseVerdictTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
