package document

import (
	"fmt"
	"strconv"
	"strings"
)

// ---- Path helpers (slash notation) ----

func split(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isIndex(seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Lookup returns the node at a slash separated path such as "address/lines/0". Missing
// attributes and out of range indexes report false without an error.
func Lookup(root Node, path string) (Node, bool, error) {
	cur := root
	for _, seg := range split(path) {
		switch n := cur.(type) {
		case *Object:
			nxt, ok := n.Get(seg)
			if !ok {
				return nil, false, nil
			}
			cur = nxt
		case Array:
			idx, ok := isIndex(seg)
			if !ok {
				return nil, false, fmt.Errorf("array index expected at segment %q", seg)
			}
			if idx < 0 || idx >= len(n) {
				return nil, false, nil
			}
			cur = n[idx]
		default:
			return nil, false, nil
		}
	}
	return cur, true, nil
}

// SetPath stores val at path, creating missing objects for attribute segments. Arrays are
// never created implicitly.
func SetPath(root *Object, path string, val Node) error {
	segs := split(path)
	if len(segs) == 0 {
		return fmt.Errorf("empty path")
	}
	var cur Node = root
	for i, seg := range segs {
		last := i == len(segs)-1
		switch n := cur.(type) {
		case *Object:
			if last {
				n.Set(seg, val)
				return nil
			}
			nxt, ok := n.Get(seg)
			if !ok || IsNull(nxt) {
				if _, isIdx := isIndex(segs[i+1]); isIdx {
					return fmt.Errorf("cannot create array automatically for %s", path)
				}
				nxt = NewObject()
				n.Set(seg, nxt)
			}
			cur = nxt
		case Array:
			idx, ok := isIndex(seg)
			if !ok {
				return fmt.Errorf("expected array index at %q", seg)
			}
			if idx < 0 || idx >= len(n) {
				return fmt.Errorf("index out of range at %q", seg)
			}
			if last {
				n[idx] = val
				return nil
			}
			cur = n[idx]
		default:
			return fmt.Errorf("cannot descend into %s at %q", kindOf(n), seg)
		}
	}
	return nil
}

// DeletePath removes the attribute at path. Missing parents are ignored; deleting array
// elements is not supported.
func DeletePath(root *Object, path string) error {
	segs := split(path)
	var cur Node = root
	for i, seg := range segs {
		last := i == len(segs)-1
		switch n := cur.(type) {
		case *Object:
			if last {
				n.Remove(seg)
				return nil
			}
			nxt, ok := n.Get(seg)
			if !ok {
				return nil
			}
			cur = nxt
		case Array:
			idx, ok := isIndex(seg)
			if !ok {
				return fmt.Errorf("expected index at %q; array deletion unsupported", seg)
			}
			if idx < 0 || idx >= len(n) {
				return nil
			}
			if last {
				return fmt.Errorf("array element deletion not supported at %q", path)
			}
			cur = n[idx]
		default:
			return nil
		}
	}
	return nil
}

func kindOf(n Node) Kind {
	if n == nil {
		return KindNull
	}
	return n.Kind()
}
