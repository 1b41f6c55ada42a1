// Package delta computes and applies structural differences between two
// JSON snapshots. The Memory Manager uses it to replace runs of full
// history entries with one compact checkpoint.
//
// The diff is recursive and type-directed: objects diff by key union,
// arrays diff positionally, everything else is an opaque replace. The
// positional array diff cannot detect element reordering; a mid-sequence
// insert or delete degrades into a replace cascade over the trailing
// indices. The binding contract is weaker and always holds: applying the
// emitted deltas to A, in order, reproduces B exactly.
package delta

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	rwerr "github.com/avelhart/rewind/internal/errors"
)

// Op identifies the kind of structural change a Delta describes.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	// OpMove is part of the wire vocabulary for callers that build their
	// own deltas. Diff never emits it; Apply treats it as a replace.
	OpMove Op = "move"
)

// Delta is one atomic structural change between two snapshots.
// Path addresses object keys and array indices from the document root.
type Delta struct {
	Path  []string `json:"path"`
	Op    Op       `json:"op"`
	Value any      `json:"value,omitempty"`
	Old   any      `json:"old_value,omitempty"`
}

// Diff returns the ordered delta sequence that transforms JSON document a
// into JSON document b. Both documents must be valid JSON.
func Diff(a, b []byte) ([]Delta, error) {
	if !gjson.ValidBytes(a) || !gjson.ValidBytes(b) {
		return nil, rwerr.ErrInvalidSnapshot
	}
	var out []Delta
	diffValue(gjson.ParseBytes(a), gjson.ParseBytes(b), nil, &out)
	return out, nil
}

func diffValue(a, b gjson.Result, path []string, out *[]Delta) {
	switch {
	case a.IsObject() && b.IsObject():
		diffObject(a, b, path, out)
	case a.IsArray() && b.IsArray():
		diffArray(a, b, path, out)
	default:
		// Primitives, or a type change: opaque substitution, no
		// structural recursion into the changed subtree.
		if !jsonEqual(a, b) {
			*out = append(*out, Delta{
				Path:  clonePath(path),
				Op:    OpReplace,
				Value: b.Value(),
				Old:   a.Value(),
			})
		}
	}
}

func diffObject(a, b gjson.Result, path []string, out *[]Delta) {
	am := a.Map()
	bm := b.Map()

	// Stable output order: keys of a first (recurse/remove), then keys
	// new in b (add). gjson.Map preserves document order within each.
	a.ForEach(func(key, av gjson.Result) bool {
		k := key.String()
		if bv, ok := bm[k]; ok {
			diffValue(av, bv, append(path, k), out)
		} else {
			*out = append(*out, Delta{
				Path: clonePath(append(path, k)),
				Op:   OpRemove,
				Old:  av.Value(),
			})
		}
		return true
	})
	b.ForEach(func(key, bv gjson.Result) bool {
		k := key.String()
		if _, ok := am[k]; !ok {
			*out = append(*out, Delta{
				Path:  clonePath(append(path, k)),
				Op:    OpAdd,
				Value: bv.Value(),
			})
		}
		return true
	})
}

func diffArray(a, b gjson.Result, path []string, out *[]Delta) {
	aa := a.Array()
	ba := b.Array()

	for i := 0; i < len(aa) && i < len(ba); i++ {
		diffValue(aa[i], ba[i], append(path, itoa(i)), out)
	}
	for i := len(aa); i < len(ba); i++ {
		*out = append(*out, Delta{
			Path:  clonePath(append(path, itoa(i))),
			Op:    OpAdd,
			Value: ba[i].Value(),
		})
	}
	// Trailing removals run highest index first so that each delta's
	// index is still valid when applied in sequence.
	for i := len(aa) - 1; i >= len(ba); i-- {
		*out = append(*out, Delta{
			Path: clonePath(append(path, itoa(i))),
			Op:   OpRemove,
			Old:  aa[i].Value(),
		})
	}
}

// Apply returns a new document produced by applying the deltas to doc in
// the order given. Applying deltas out of generation order is undefined.
func Apply(doc []byte, ds []Delta) ([]byte, error) {
	if !gjson.ValidBytes(doc) {
		return nil, rwerr.ErrInvalidSnapshot
	}
	out := make([]byte, len(doc))
	copy(out, doc)

	var err error
	for i, d := range ds {
		if len(d.Path) == 0 {
			// Root substitution replaces the whole document.
			switch d.Op {
			case OpReplace, OpAdd, OpMove:
				out, err = json.Marshal(d.Value)
			case OpRemove:
				out = []byte("null")
			default:
				err = fmt.Errorf("unknown delta op %q", d.Op)
			}
			if err != nil {
				return nil, fmt.Errorf("delta %d: %w", i, err)
			}
			continue
		}

		p := joinPath(d.Path)
		switch d.Op {
		case OpAdd, OpReplace, OpMove:
			out, err = sjson.SetBytes(out, p, d.Value)
		case OpRemove:
			out, err = sjson.DeleteBytes(out, p)
		default:
			err = fmt.Errorf("unknown delta op %q", d.Op)
		}
		if err != nil {
			return nil, fmt.Errorf("delta %d at %s: %w", i, p, err)
		}
	}
	return out, nil
}

// Invert returns the delta sequence that reverses ds: applying
// Invert(Diff(A, B)) to B yields A. The result is emitted in reverse
// order so it can be applied front to back like any other sequence.
func Invert(ds []Delta) []Delta {
	out := make([]Delta, 0, len(ds))
	for i := len(ds) - 1; i >= 0; i-- {
		d := ds[i]
		switch d.Op {
		case OpAdd:
			out = append(out, Delta{Path: d.Path, Op: OpRemove, Old: d.Value})
		case OpRemove:
			out = append(out, Delta{Path: d.Path, Op: OpAdd, Value: d.Old})
		case OpReplace, OpMove:
			out = append(out, Delta{Path: d.Path, Op: d.Op, Value: d.Old, Old: d.Value})
		}
	}
	return out
}

// jsonEqual reports observable equality of two parsed values.
func jsonEqual(a, b gjson.Result) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Raw == b.Raw {
		return true
	}
	// Raw text can differ for equal values (1 vs 1.0, key order).
	return reflect.DeepEqual(a.Value(), b.Value())
}

// joinPath renders path segments as a gjson/sjson path expression,
// escaping characters that are significant in path syntax.
func joinPath(path []string) string {
	var sb strings.Builder
	for i, seg := range path {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(escapeSegment(seg))
	}
	return sb.String()
}

func escapeSegment(seg string) string {
	if !strings.ContainsAny(seg, `.\*?|#@`) {
		return seg
	}
	var sb strings.Builder
	for _, r := range seg {
		switch r {
		case '.', '\\', '*', '?', '|', '#', '@':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func clonePath(path []string) []string {
	out := make([]string, len(path))
	copy(out, path)
	return out
}

func itoa(i int) string {
	return fmt.Sprintf("%d", i)
}
