// Package extract performs targeted field extraction over semi-structured
// payload fragments. Upstream payloads occasionally carry encoding artifacts
// that break a strict JSON parse, so each field is matched independently:
// one malformed sub-object does not prevent extracting its siblings.
package extract

import (
	"regexp"
	"strconv"
	"sync"
)

// Kind is the value type a field is parsed as.
type Kind int

const (
	Int Kind = iota
	Float
	String
	Bool
)

// FieldSpec names one field to pull out of a fragment and how to type it.
type FieldSpec struct {
	Name string
	Kind Kind
}

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

func fieldPattern(name string, kind Kind) *regexp.Regexp {
	key := name + "\x00" + strconv.Itoa(int(kind))

	patternMu.RLock()
	re, ok := patternCache[key]
	patternMu.RUnlock()
	if ok {
		return re
	}

	var expr string
	switch kind {
	case Int:
		expr = `"` + regexp.QuoteMeta(name) + `":(-?\d+)`
	case Float:
		expr = `"` + regexp.QuoteMeta(name) + `":(-?\d+(?:\.\d+)?)`
	case String:
		expr = `"` + regexp.QuoteMeta(name) + `":"([^"]+)"`
	case Bool:
		expr = `"` + regexp.QuoteMeta(name) + `":(true|false)`
	}
	re = regexp.MustCompile(expr)

	patternMu.Lock()
	patternCache[key] = re
	patternMu.Unlock()
	return re
}

// Fields extracts every spec'd field present in fragment, returning a map of
// field name to typed value. Fields that are absent or fail to parse are
// simply omitted. When a field name occurs more than once in the fragment
// (a nested object reusing a key), the first match wins; callers that need
// a nested value must scope the search with Section first.
func Fields(fragment string, specs []FieldSpec) map[string]any {
	out := make(map[string]any, len(specs))
	for _, spec := range specs {
		m := fieldPattern(spec.Name, spec.Kind).FindStringSubmatch(fragment)
		if m == nil {
			continue
		}
		switch spec.Kind {
		case Int:
			v, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			out[spec.Name] = v
		case Float:
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			out[spec.Name] = v
		case String:
			out[spec.Name] = m[1]
		case Bool:
			out[spec.Name] = m[1] == "true"
		}
	}
	return out
}

// GetInt returns the named field as an integer.
func GetInt(fields map[string]any, name string) (int64, bool) {
	v, ok := fields[name].(int64)
	return v, ok
}

// IntPtr returns the named integer field or nil when absent.
func IntPtr(fields map[string]any, name string) *int64 {
	if v, ok := fields[name].(int64); ok {
		return &v
	}
	return nil
}

// FloatPtr returns the named float field or nil when absent.
func FloatPtr(fields map[string]any, name string) *float64 {
	if v, ok := fields[name].(float64); ok {
		return &v
	}
	return nil
}

// StrPtr returns the named string field or nil when absent.
func StrPtr(fields map[string]any, name string) *string {
	if v, ok := fields[name].(string); ok {
		return &v
	}
	return nil
}

// BoolVal returns the named boolean field, false when absent.
func BoolVal(fields map[string]any, name string) bool {
	v, _ := fields[name].(bool)
	return v
}
