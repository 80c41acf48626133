package argtree

import (
	"errors"
	"fmt"
	"strings"
)

// Explicit failure variants of path resolution.
var (
	// ErrPathNotFound means a path segment named a key that does not exist.
	ErrPathNotFound = errors.New("argtree: path not found")
	// ErrNotObject means a path segment tried to descend into a non-object.
	ErrNotObject = errors.New("argtree: not an object")
)

// TypeError reports a variant mismatch on value extraction.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("argtree: want %s, got %s", e.Want, e.Got)
}

// Resolve walks a dot-separated path of object keys and returns the node at
// its end. Fails with ErrPathNotFound or ErrNotObject (wrapped with the
// offending path prefix).
func (n *Node) Resolve(path string) (*Node, error) {
	cur := n
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		if cur == nil || cur.kind != KindObject {
			return nil, fmt.Errorf("%q: %w", strings.Join(segments[:i], "."), ErrNotObject)
		}
		next, ok := cur.obj[seg]
		if !ok {
			return nil, fmt.Errorf("%q: %w", strings.Join(segments[:i+1], "."), ErrPathNotFound)
		}
		cur = next
	}
	return cur, nil
}

// Set writes child at the dot-separated path, creating intermediate objects
// as needed. Fails with ErrNotObject when an existing intermediate segment is
// not an object. The write is a single idempotent assignment.
func (n *Node) Set(path string, child *Node) error {
	if n == nil || n.kind != KindObject {
		return fmt.Errorf("%q: %w", "", ErrNotObject)
	}
	cur := n
	segments := strings.Split(path, ".")
	for i, seg := range segments[:len(segments)-1] {
		next, ok := cur.obj[seg]
		if !ok || next.IsNull() {
			next = Object(nil)
			cur.obj[seg] = next
		}
		if next.kind != KindObject {
			return fmt.Errorf("%q: %w", strings.Join(segments[:i+1], "."), ErrNotObject)
		}
		cur = next
	}
	cur.obj[segments[len(segments)-1]] = child
	return nil
}

// StringAt resolves path and returns its string payload.
func (n *Node) StringAt(path string) (string, error) {
	node, err := n.Resolve(path)
	if err != nil {
		return "", err
	}
	return node.StringValue()
}
