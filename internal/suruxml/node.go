package suruxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// node is a minimal element tree. Text is the character data before the
// first child element.
type node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*node

	sawChild bool
}

func parseTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
				parent.sawChild = true
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 && !stack[len(stack)-1].sawChild {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", io.ErrUnexpectedEOF)
	}
	return root, nil
}

// text is Text without surrounding whitespace.
func (n *node) text() string {
	return strings.TrimSpace(n.Text)
}

// child returns the first direct child called name.
func (n *node) child(name string) *node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// descendants returns every element below n called name, in document
// order.
func (n *node) descendants(name string) []*node {
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.Children {
			if c.Name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// find returns the first descendant called name.
func (n *node) find(name string) *node {
	if d := n.descendants(name); len(d) > 0 {
		return d[0]
	}
	return nil
}

// findPath returns the children called childName of every descendant
// called parentName, in document order.
func (n *node) findPath(parentName, childName string) []*node {
	var out []*node
	for _, p := range n.descendants(parentName) {
		for _, c := range p.Children {
			if c.Name == childName {
				out = append(out, c)
			}
		}
	}
	return out
}
