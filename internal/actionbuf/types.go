package actionbuf

// Section is one decoded section of a buffer.
type Section struct {
	Operation   string `yaml:"operation"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
	Items       []Item `yaml:"items"`
}

// Item is one action of a section.
type Item struct {
	Action int  `yaml:"action"`
	Cost   int  `yaml:"cost"`
	Node   Node `yaml:",inline"`
}

// Node is a field list with nested nodes. The first field of a nested node
// conventionally names what it describes, e.g. "property" or "role".
type Node struct {
	Fields   []any  `yaml:"fields,flow"`
	Children []Node `yaml:"children,omitempty"`
}

// Leaf returns a node without children.
func Leaf(fields ...any) Node {
	return Node{Fields: fields}
}
