// Package argtree models an operation's argument tree as a tagged union.
// Cross-cutting concerns (value injection, authorization-path resolution)
// traverse and mutate this tree before an operation handler decodes it.
package argtree

import (
	"encoding/json"
	"fmt"
)

// Kind tags the variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Node is one value in an argument tree. The zero value is the null node.
type Node struct {
	kind Kind
	b    bool
	num  float64
	str  string
	obj  map[string]*Node
	list []*Node
}

// Null returns the null node.
func Null() *Node { return &Node{kind: KindNull} }

// Bool wraps a boolean value.
func Bool(v bool) *Node { return &Node{kind: KindBool, b: v} }

// Number wraps a numeric value.
func Number(v float64) *Node { return &Node{kind: KindNumber, num: v} }

// String wraps a string value.
func String(v string) *Node { return &Node{kind: KindString, str: v} }

// Object wraps a set of named children. A nil map is an empty object.
func Object(children map[string]*Node) *Node {
	if children == nil {
		children = map[string]*Node{}
	}
	return &Node{kind: KindObject, obj: children}
}

// List wraps an ordered sequence of children.
func List(children ...*Node) *Node {
	return &Node{kind: KindList, list: children}
}

// FromJSON decodes a JSON document into a Node tree.
func FromJSON(data []byte) (*Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("argtree: decode: %w", err)
	}
	return FromValue(v), nil
}

// FromValue converts a decoded-JSON value (map[string]any, []any, string,
// float64, bool, nil) into a Node tree. Unknown types become null.
func FromValue(v any) *Node {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case string:
		return String(t)
	case map[string]any:
		children := make(map[string]*Node, len(t))
		for k, cv := range t {
			children[k] = FromValue(cv)
		}
		return Object(children)
	case []any:
		children := make([]*Node, len(t))
		for i, cv := range t {
			children[i] = FromValue(cv)
		}
		return List(children...)
	default:
		return Null()
	}
}

// Kind returns the variant tag.
func (n *Node) Kind() Kind { return n.kind }

// IsNull reports whether the node is the null variant.
func (n *Node) IsNull() bool { return n == nil || n.kind == KindNull }

// BoolValue returns the boolean payload. Other variants fail with a TypeError.
func (n *Node) BoolValue() (bool, error) {
	if n == nil || n.kind != KindBool {
		return false, &TypeError{Want: KindBool, Got: n.Kind()}
	}
	return n.b, nil
}

// NumberValue returns the numeric payload.
func (n *Node) NumberValue() (float64, error) {
	if n == nil || n.kind != KindNumber {
		return 0, &TypeError{Want: KindNumber, Got: n.Kind()}
	}
	return n.num, nil
}

// StringValue returns the string payload.
func (n *Node) StringValue() (string, error) {
	if n == nil || n.kind != KindString {
		return "", &TypeError{Want: KindString, Got: n.Kind()}
	}
	return n.str, nil
}

// Get returns the named child of an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.kind != KindObject {
		return nil, false
	}
	c, ok := n.obj[key]
	return c, ok
}

// Items returns the children of a list node.
func (n *Node) Items() ([]*Node, error) {
	if n == nil || n.kind != KindList {
		return nil, &TypeError{Want: KindList, Got: n.Kind()}
	}
	return n.list, nil
}

// ToValue converts the tree back into plain decoded-JSON values.
func (n *Node) ToValue() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindNull:
		return nil
	case KindBool:
		return n.b
	case KindNumber:
		return n.num
	case KindString:
		return n.str
	case KindObject:
		out := make(map[string]any, len(n.obj))
		for k, c := range n.obj {
			out[k] = c.ToValue()
		}
		return out
	case KindList:
		out := make([]any, len(n.list))
		for i, c := range n.list {
			out[i] = c.ToValue()
		}
		return out
	}
	return nil
}
