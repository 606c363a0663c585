// Package partial decodes JSON prefixes, such as the text a language model
// has produced so far, into a tree that records which values are finished.
package partial

// Kind identifies the JSON type of a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Node is one decoded value. Complete reports whether the value's closing
// delimiter (or, for scalars, its terminating character) has been seen.
type Node struct {
	Kind     Kind
	Complete bool

	Bool   bool
	Number float64
	Str    string
	Items  []*Node
	Fields []Field
}

// Field is an object member whose key has been fully read.
type Field struct {
	Key   string
	Value *Node
}

// Get returns the value of the last member named key, or nil.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != Object {
		return nil
	}
	var found *Node
	for _, f := range n.Fields {
		if f.Key == key {
			found = f.Value
		}
	}
	return found
}
