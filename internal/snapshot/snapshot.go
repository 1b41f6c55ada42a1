// Package snapshot provides a cycle-tolerant serializer for store state.
//
// Checkpoints capture arbitrary caller-provided state, which may contain
// cycles, functions, channels or non-finite floats that encoding/json
// rejects. Marshal walks the value depth-first with a visited set and
// substitutes a placeholder for anything unencodable:
//
//	cycle           -> "[Circular]"
//	func            -> "[Function]"
//	chan            -> "[Channel]"
//	NaN, +Inf, -Inf -> null
//	unsafe values   -> null
package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	rwerr "github.com/avelhart/rewind/internal/errors"
)

// Placeholder values substituted for unencodable structures.
const (
	Circular = "[Circular]"
	Function = "[Function]"
	Channel  = "[Channel]"
)

// maxDepth bounds the walk so corrupt self-referential values that evade
// pointer identity (fresh values per step) cannot recurse forever.
const maxDepth = 1000

// Marshal serializes v to JSON after sanitizing it.
func Marshal(v any) ([]byte, error) {
	tree, err := Sanitize(v)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, &rwerr.SerializationError{Cause: err}
	}
	return data, nil
}

// Sanitize converts v into a tree of JSON-encodable values
// (map[string]any, []any, string, float64, bool, nil), applying the
// substitution rules documented on the package.
func Sanitize(v any) (any, error) {
	w := walker{onPath: make(map[uintptr]bool)}
	return w.walk(reflect.ValueOf(v), "$", 0)
}

type walker struct {
	// onPath holds the addresses of containers on the current descent
	// path. Presence means a back-edge, i.e. a true cycle; shared but
	// acyclic references serialize normally.
	onPath map[uintptr]bool
}

func (w walker) walk(v reflect.Value, path string, depth int) (any, error) {
	if depth > maxDepth {
		return nil, &rwerr.SerializationError{Path: path, Cause: fmt.Errorf("exceeds max depth %d", maxDepth)}
	}
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return w.walk(v.Elem(), path, depth+1)

	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		addr := v.Pointer()
		if w.onPath[addr] {
			return Circular, nil
		}
		w.onPath[addr] = true
		defer delete(w.onPath, addr)
		return w.walk(v.Elem(), path, depth+1)

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		addr := v.Pointer()
		if w.onPath[addr] {
			return Circular, nil
		}
		w.onPath[addr] = true
		defer delete(w.onPath, addr)

		keys := make([]string, 0, v.Len())
		byKey := make(map[string]reflect.Value, v.Len())
		for _, k := range v.MapKeys() {
			ks := fmt.Sprintf("%v", k.Interface())
			keys = append(keys, ks)
			byKey[ks] = v.MapIndex(k)
		}
		sort.Strings(keys)

		out := make(map[string]any, len(keys))
		for _, ks := range keys {
			val, err := w.walk(byKey[ks], path+"."+ks, depth+1)
			if err != nil {
				return nil, err
			}
			out[ks] = val
		}
		return out, nil

	case reflect.Slice:
		if v.IsNil() {
			return []any{}, nil
		}
		addr := v.Pointer()
		if w.onPath[addr] {
			return Circular, nil
		}
		w.onPath[addr] = true
		defer delete(w.onPath, addr)
		return w.walkSeq(v, path, depth)

	case reflect.Array:
		return w.walkSeq(v, path, depth)

	case reflect.Struct:
		out := make(map[string]any, v.NumField())
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, omit := jsonFieldName(f)
			if name == "" {
				continue
			}
			val, err := w.walk(v.Field(i), path+"."+name, depth+1)
			if err != nil {
				return nil, err
			}
			if omit && isEmptyValue(val) {
				continue
			}
			out[name] = val
		}
		return out, nil

	case reflect.Func:
		return Function, nil

	case reflect.Chan:
		return Channel, nil

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil
		}
		return f, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.String:
		return v.String(), nil

	default:
		// Complex, UnsafePointer, Uintptr: no JSON representation.
		return nil, nil
	}
}

func (w walker) walkSeq(v reflect.Value, path string, depth int) (any, error) {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := w.walk(v.Index(i), fmt.Sprintf("%s[%d]", path, i), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// jsonFieldName resolves the encoded name of a struct field per its json
// tag. An empty name means the field is skipped ("-").
func jsonFieldName(f reflect.StructField) (name string, omitempty bool) {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name, false
	}
	name = tag
	if i := indexComma(tag); i >= 0 {
		name = tag[:i]
		omitempty = hasOmitempty(tag[i+1:])
	}
	if name == "-" {
		return "", false
	}
	if name == "" {
		name = f.Name
	}
	return name, omitempty
}

func indexComma(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			return i
		}
	}
	return -1
}

func hasOmitempty(opts string) bool {
	for opts != "" {
		var opt string
		if i := indexComma(opts); i >= 0 {
			opt, opts = opts[:i], opts[i+1:]
		} else {
			opt, opts = opts, ""
		}
		if opt == "omitempty" {
			return true
		}
	}
	return false
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int64:
		return t == 0
	case uint64:
		return t == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
