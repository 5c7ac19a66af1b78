package form990

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// Node is one element of a parsed filing document. Name is the
// namespace-stripped local name; Text is the character data directly inside
// the element.
type Node struct {
	Name     string
	Text     string
	Parent   *Node
	Children []*Node
}

// Document is a parsed Form 990 e-file. It is fetched and parsed once per
// filing and shared by reference across all extractors.
type Document struct {
	Root *Node
}

// Parse builds a document tree from raw e-file bytes. Filings span multiple
// schema revisions and namespaces, so tags are reduced to local names at
// parse time and all matching downstream is namespace-agnostic.
func Parse(data []byte) (*Document, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "form990: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var root *Node
	var current *Node
	var text strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "form990: read token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Parent: current}
			if current != nil {
				current.Children = append(current.Children, n)
			} else if root == nil {
				root = n
			}
			current = n
			text.Reset()
		case xml.CharData:
			if current != nil {
				text.Write(t)
			}
		case xml.EndElement:
			if current != nil {
				if current.Text == "" {
					current.Text = strings.TrimSpace(text.String())
				}
				text.Reset()
				current = current.Parent
			}
		}
	}

	if root == nil {
		return nil, eris.New("form990: empty document")
	}
	return &Document{Root: root}, nil
}

// walk visits n and its descendants in document order (pre-order). Returning
// false from fn stops the walk.
func (n *Node) walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// FindAll returns every node in the subtree whose local name matches one of
// the given names, in document order.
func (n *Node) FindAll(names ...string) []*Node {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	var found []*Node
	n.walk(func(node *Node) bool {
		if want[node.Name] {
			found = append(found, node)
		}
		return true
	})
	return found
}

// FindAll searches the whole document. Nil-safe so extractors can run
// against a filing that failed to parse and simply find nothing.
func (d *Document) FindAll(names ...string) []*Node {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.FindAll(names...)
}
