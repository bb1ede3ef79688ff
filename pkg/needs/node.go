package needs

import (
	"encoding/json"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Kind identifies the JSON type of a Node.
type Kind int

// Node kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON type name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object node.
type Member struct {
	Key   string
	Value *Node
}

// Node is an immutable JSON-like value that preserves object key order.
//
// Numbers keep their literal text so that counts and ids are never
// rounded through float64.
type Node struct {
	kind    Kind
	boolean bool
	text    string // string value or number literal
	items   []*Node
	members []Member
	index   map[string]int
}

// Null returns a null node.
func Null() *Node { return &Node{kind: KindNull} }

// Bool returns a boolean node.
func Bool(b bool) *Node { return &Node{kind: KindBool, boolean: b} }

// Number returns a number node from its literal text.
func Number(literal string) *Node { return &Node{kind: KindNumber, text: literal} }

// String returns a string node.
func String(s string) *Node { return &Node{kind: KindString, text: s} }

// Array returns an array node.
func Array(items ...*Node) *Node { return &Node{kind: KindArray, items: items} }

// Object returns an object node. Duplicate keys keep the position of the
// first occurrence and the value of the last one.
func Object(members ...Member) *Node {
	n := &Node{kind: KindObject, index: make(map[string]int, len(members))}
	for _, m := range members {
		n.set(m.Key, m.Value)
	}
	return n
}

func (n *Node) set(key string, value *Node) {
	if i, ok := n.index[key]; ok {
		n.members[i].Value = value
		return
	}
	n.index[key] = len(n.members)
	n.members = append(n.members, Member{Key: key, Value: value})
}

// Kind returns the node kind. A nil node reports KindNull.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsObject reports whether the node is an object.
func (n *Node) IsObject() bool { return n.Kind() == KindObject }

// Get returns the value stored under key for object nodes.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != KindObject {
		return nil, false
	}
	i, ok := n.index[key]
	if !ok {
		return nil, false
	}
	return n.members[i].Value, true
}

// Child resolves one path segment: an object key or an array index.
// The returned position is the child's place in document order.
func (n *Node) Child(segment string) (*Node, int, bool) {
	switch n.Kind() {
	case KindObject:
		i, ok := n.index[segment]
		if !ok {
			return nil, 0, false
		}
		return n.members[i].Value, i, true
	case KindArray:
		i, err := strconv.Atoi(segment)
		if err != nil || i < 0 || i >= len(n.items) {
			return nil, 0, false
		}
		return n.items[i], i, true
	default:
		return nil, 0, false
	}
}

// Members returns the object members in document order.
func (n *Node) Members() []Member {
	if n.Kind() != KindObject {
		return nil
	}
	return n.members
}

// Items returns the array elements.
func (n *Node) Items() []*Node {
	if n.Kind() != KindArray {
		return nil
	}
	return n.items
}

// Len returns the number of members or elements, or the length of a string.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindObject:
		return len(n.members)
	case KindArray:
		return len(n.items)
	case KindString:
		return len(n.text)
	default:
		return 0
	}
}

// AsString returns the string value and true for string nodes.
func (n *Node) AsString() (string, bool) {
	if n.Kind() != KindString {
		return "", false
	}
	return n.text, true
}

// AsInt returns the integer value of a number node without a fractional part.
func (n *Node) AsInt() (int64, bool) {
	if n.Kind() != KindNumber {
		return 0, false
	}
	if i, err := strconv.ParseInt(n.text, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(n.text, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// Truthy follows the usual scripting notion of truth: null, false, zero,
// and empty strings, arrays and objects are false.
func (n *Node) Truthy() bool {
	switch n.Kind() {
	case KindNull:
		return false
	case KindBool:
		return n.boolean
	case KindNumber:
		f, err := strconv.ParseFloat(n.text, 64)
		return err != nil || f != 0
	default:
		return n.Len() > 0
	}
}

// Text renders the node for messages: strings verbatim, scalars as their
// literal, containers as compact JSON.
func (n *Node) Text() string {
	switch n.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(n.boolean)
	case KindNumber, KindString:
		return n.text
	default:
		b, err := gojson.Marshal(n.Interface())
		if err != nil {
			return n.Kind().String()
		}
		return string(b)
	}
}

// Equal reports deep equality. Object comparison ignores key order.
func (n *Node) Equal(other *Node) bool {
	if n.Kind() != other.Kind() {
		return false
	}
	switch n.Kind() {
	case KindNull:
		return true
	case KindBool:
		return n.boolean == other.boolean
	case KindNumber:
		if n.text == other.text {
			return true
		}
		a, errA := strconv.ParseFloat(n.text, 64)
		b, errB := strconv.ParseFloat(other.text, 64)
		return errA == nil && errB == nil && a == b
	case KindString:
		return n.text == other.text
	case KindArray:
		if len(n.items) != len(other.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		if len(n.members) != len(other.members) {
			return false
		}
		for _, m := range n.members {
			v, ok := other.Get(m.Key)
			if !ok || !m.Value.Equal(v) {
				return false
			}
		}
		return true
	}
}

// Interface converts the node into the generic tree used by the schema
// validator: map[string]any, []any, string, bool, nil and json.Number.
func (n *Node) Interface() any {
	switch n.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return n.boolean
	case KindNumber:
		return json.Number(n.text)
	case KindString:
		return n.text
	case KindArray:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}
		return out
	default:
		out := make(map[string]any, len(n.members))
		for _, m := range n.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
}

// SplitTokens splits a comma separated string, trimming whitespace and
// dropping empty tokens.
func SplitTokens(s string) []string {
	parts := strings.Split(s, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
