package awsevent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// path grammar:
//
//	detail.build-status
//	Records[0].Sns.Message
//	["Event Source"]
//	detail.attempts[0]["container"].logStreamName
type pathSegment struct {
	key   string
	index int
	isIdx bool
}

func parsePath(path string) ([]pathSegment, error) {
	segments := []pathSegment{}

	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end == -1 {
				return nil, fmt.Errorf("unterminated '[' in path: %s", path)
			}
			inner := path[i+1 : i+end]
			i += end + 1

			if len(inner) >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[len(inner)-1] == inner[0] {
				segments = append(segments, pathSegment{key: inner[1 : len(inner)-1]})
				continue
			}

			idx, err := strconv.Atoi(inner)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("bad index '%s' in path: %s", inner, path)
			}
			segments = append(segments, pathSegment{index: idx, isIdx: true})
		default:
			end := strings.IndexAny(path[i:], ".[")
			if end == -1 {
				end = len(path) - i
			}
			segments = append(segments, pathSegment{key: path[i : i+end]})
			i += end
		}
	}

	return segments, nil
}

// lookup never fails on missing intermediates, it just reports "not found"
func lookup(root interface{}, path string) (interface{}, bool) {
	segments, err := parsePath(path)
	if err != nil {
		return nil, false
	}

	current := root
	for _, segment := range segments {
		if segment.isIdx {
			list, ok := current.([]interface{})
			if !ok || segment.index >= len(list) {
				return nil, false
			}
			current = list[segment.index]
			continue
		}

		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}

		current, ok = obj[segment.key]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// stringifies scalars the way they'd be shown to a human. JSON null counts as absent.
func asString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		asJson, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(asJson), true
	}
}

// for values taken from Get() / Remaining(). absent and null values become ""
func Stringify(value interface{}) string {
	str, _ := asString(value)
	return str
}
