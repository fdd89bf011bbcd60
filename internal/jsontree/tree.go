// Package jsontree addresses values inside a JSON document by slash
// separated paths, the way the document store exposes them: "tasks/0/title"
// is the title of the first element of the tasks document.
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrConflict is returned when a path cannot be written without changing
// the shape of an array, for example a name below an array or an index
// past its end.
var ErrConflict = errors.New("path conflicts with document")

// Split separates path into its root document name and the segments below
// it. Empty segments are dropped.
func Split(path string) (root string, rest []string) {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if root == "" {
			root = seg
			continue
		}
		rest = append(rest, seg)
	}
	return root, rest
}

// IsNull reports whether raw is absent or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// Lookup returns the value at segs below doc, or nil if there is none.
func Lookup(doc json.RawMessage, segs []string) (json.RawMessage, error) {
	cur := doc
	for _, seg := range segs {
		if IsNull(cur) {
			return nil, nil
		}
		switch bytes.TrimSpace(cur)[0] {
		case '{':
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(cur, &fields); err != nil {
				return nil, err
			}
			cur = fields[seg]
		case '[':
			var items []json.RawMessage
			if err := json.Unmarshal(cur, &items); err != nil {
				return nil, err
			}
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(items) {
				return nil, nil
			}
			cur = items[i]
		default:
			return nil, nil
		}
	}
	if IsNull(cur) {
		return nil, nil
	}
	return cur, nil
}

// Assign returns doc with the value at segs set to val. A null val removes
// the value. Containers left empty by a removal collapse to null, so the
// result is nil once nothing remains. Removing an array element leaves null
// in its place unless it was the last one, keeping sibling indices stable.
// Missing parents are created: an array when the first index is 0, an
// object otherwise. A scalar in the way is replaced.
func Assign(doc json.RawMessage, segs []string, val json.RawMessage) (json.RawMessage, error) {
	if len(segs) == 0 {
		if IsNull(val) {
			return nil, nil
		}
		return val, nil
	}
	seg, rest := segs[0], segs[1:]

	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return assignIndex(trimmed, seg, rest, val)
	}
	if (len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))) && seg == "0" {
		if IsNull(val) {
			return nil, nil
		}
		return assignIndex(json.RawMessage("[]"), seg, rest, val)
	}

	fields := map[string]json.RawMessage{}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, err
		}
	}
	child, err := Assign(fields[seg], rest, val)
	if err != nil {
		return nil, err
	}
	if child == nil {
		delete(fields, seg)
	} else {
		fields[seg] = child
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return json.Marshal(fields)
}

func assignIndex(doc json.RawMessage, seg string, rest []string, val json.RawMessage) (json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(doc, &items); err != nil {
		return nil, err
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 {
		return nil, fmt.Errorf("%w: %q is not an array index", ErrConflict, seg)
	}
	if i > len(items) {
		return nil, fmt.Errorf("%w: index %d past end of array of %d", ErrConflict, i, len(items))
	}

	var old json.RawMessage
	if i < len(items) {
		old = items[i]
	}
	child, err := Assign(old, rest, val)
	if err != nil {
		return nil, err
	}

	switch {
	case child != nil && i == len(items):
		items = append(items, child)
	case child != nil:
		items[i] = child
	case i < len(items):
		items[i] = json.RawMessage("null")
	}
	for len(items) > 0 && IsNull(items[len(items)-1]) {
		items = items[:len(items)-1]
	}
	if len(items) == 0 {
		return nil, nil
	}
	return json.Marshal(items)
}
