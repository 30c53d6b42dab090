// Package xmltree is a minimal order-preserving XML tree: attribute order
// and child order survive a parse/serialize round trip untouched, which
// encoding/xml's struct-tag marshaling does not guarantee. It is the
// archive codec's equivalent of the binary codec's internal/recstream:
// a small structural layer the mutator edits directly. A re-serialized tree
// keeps the order of everything it doesn't touch, but not its exact bytes:
// empty elements are written self-closing, text and attribute values are
// re-escaped, and processing instructions and comments are dropped.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Attr is one attribute in source order.
type Attr struct {
	Name  xml.Name
	Value string
}

// Node is one XML element or text node. Text content is interleaved with
// element children in document order as text nodes in the Children slice,
// so Parse/Serialize preserve "text, then child, then text" sequences.
type Node struct {
	Name     xml.Name
	Attrs    []Attr
	Children []*Node

	// Text is non-empty only for text nodes: Name.Local == "" and Text
	// carries the raw character data, which CharDataNode constructs.
	Text string
}

// IsText reports whether n is a text node rather than an element.
func (n *Node) IsText() bool {
	return n.Name.Local == "" && n.Name.Space == ""
}

// CharDataNode wraps raw text as a child node.
func CharDataNode(text string) *Node {
	return &Node{Text: text}
}

// Attr returns the value of the named attribute (local name match, ignoring
// namespace) and whether it was present.
func (n *Node) Attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}

	return "", false
}

// SetAttr sets an existing attribute's value, or appends a new one if
// local isn't present, preserving the position of existing attributes.
func (n *Node) SetAttr(local, value string) {
	for i, a := range n.Attrs {
		if a.Name.Local == local {
			n.Attrs[i].Value = value

			return
		}
	}

	n.Attrs = append(n.Attrs, Attr{Name: xml.Name{Local: local}, Value: value})
}

// Child returns the first direct element child whose local name matches,
// and whether one was found.
func (n *Node) Child(local string) (*Node, bool) {
	for _, c := range n.Children {
		if !c.IsText() && c.Name.Local == local {
			return c, true
		}
	}

	return nil, false
}

// ChildrenNamed returns every direct element child whose local name
// matches, in document order.
func (n *Node) ChildrenNamed(local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if !c.IsText() && c.Name.Local == local {
			out = append(out, c)
		}
	}

	return out
}

// Clone deep-copies a node and its subtree.
func (n *Node) Clone() *Node {
	clone := &Node{Name: n.Name, Text: n.Text}
	clone.Attrs = append(clone.Attrs, n.Attrs...)
	for _, c := range n.Children {
		clone.Children = append(clone.Children, c.Clone())
	}

	return clone
}

// Parse decodes a complete XML document into its root Node, preserving
// attribute order, child order, and inter-element whitespace/text. Element
// and attribute names keep their source namespace prefix in Name.Space (not
// the namespace URL), so Serialize writes them back under the same prefix.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: a.Name, Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else {
				root = n
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != t.Name {
				return nil, fmt.Errorf("xmltree: unexpected end element %s", qualifiedName(t.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, CharDataNode(string(t)))
		}
	}

	if root == nil {
		return nil, fmt.Errorf("xmltree: no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("xmltree: unclosed element %s", qualifiedName(stack[len(stack)-1].Name))
	}

	return root, nil
}

// Serialize writes n and its subtree back to XML bytes, preserving
// attribute and child order exactly as parsed (or as edited via Attrs/
// Children).
func Serialize(n *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n)

	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *Node) {
	if n.IsText() {
		xml.EscapeText(buf, []byte(n.Text)) //nolint:errcheck

		return
	}

	buf.WriteByte('<')
	buf.WriteString(qualifiedName(n.Name))
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(qualifiedName(a.Name))
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(a.Value)) //nolint:errcheck
		buf.WriteByte('"')
	}

	if len(n.Children) == 0 {
		buf.WriteString("/>")

		return
	}

	buf.WriteByte('>')
	for _, c := range n.Children {
		writeNode(buf, c)
	}
	buf.WriteString("</")
	buf.WriteString(qualifiedName(n.Name))
	buf.WriteByte('>')
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}

	return name.Space + ":" + name.Local
}
