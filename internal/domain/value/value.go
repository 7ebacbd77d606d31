// Where: fnctl/internal/domain/value/value.go
// What: Value conversion helpers for loosely typed configuration data.
// Why: Keep flattening/nesting of config snapshots free of infrastructure dependencies.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AsMap converts a value to map form when possible.
func AsMap(value any) map[string]any {
	if value == nil {
		return nil
	}
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return nil
}

// AsString returns the string representation of a value. Numbers decoded
// from JSON snapshots are float64 and are rendered in plain decimal form.
func AsString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	}
	return fmt.Sprint(value)
}

// Leaf is one flattened key/value pair.
type Leaf struct {
	Key   string
	Value string
}

// Flatten walks a nested value depth-first and returns its leaves with
// dotted keys. Map keys are visited in sorted order so the result is stable.
func Flatten(root map[string]any) []Leaf {
	var leaves []Leaf
	flattenInto(&leaves, "", root)
	return leaves
}

func flattenInto(leaves *[]Leaf, prefix string, node any) {
	switch typed := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			flattenInto(leaves, joinKey(prefix, key), typed[key])
		}
	case []any:
		for i, item := range typed {
			flattenInto(leaves, joinKey(prefix, strconv.Itoa(i)), item)
		}
	default:
		if prefix == "" {
			return
		}
		*leaves = append(*leaves, Leaf{Key: prefix, Value: AsString(typed)})
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// SetPath assigns val at a dotted path, creating intermediate maps.
// An existing scalar on the path is replaced by a map.
func SetPath(root map[string]any, path string, val any) {
	parts := strings.Split(path, ".")
	node := root
	for _, part := range parts[:len(parts)-1] {
		next := AsMap(node[part])
		if next == nil {
			next = map[string]any{}
			node[part] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = val
}
