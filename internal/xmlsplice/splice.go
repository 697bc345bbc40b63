// =============================================================================
// OPNsense Config Faker - XML Document Splicer Module
// =============================================================================
//
// This module parses a base XML document into a generic node tree, locates a
// target element by a simple ./a/b tag path, destructively replaces its
// children with the parsed contents of rendered fragment files, and
// serializes the whole document back with pretty-printing, an XML
// declaration and UTF-8 encoding.
//
// NODE MODEL:
//   A single generic node type (kind, name, attributes, ordered children,
//   text content) represents every construct. Elements are the default
//   kind; comments, processing instructions and the DOCTYPE declaration are
//   carried as their own kinds so a caller-supplied base document
//   round-trips without losing them. Nodes before and after the root
//   element live in the Document prolog/epilog. There is no per-tag schema
//   model; the splicer treats the document as opaque structure.
//
// PATH EXPRESSIONS:
//   Only the subset needed here is supported: a ./a/b tag sequence that
//   descends from the document root, selecting the first matching element
//   child at each step. No predicates, attributes, or wildcards.
//
// KNOWN BEHAVIOR:
//   A target path absent from the document is a silent no-op: the document
//   is reserialized unchanged (modulo indentation) and no error is raised.
//   This mirrors the legacy tool and can mask configuration errors; see
//   DESIGN.md.
//
// =============================================================================

package xmlsplice

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

// SpliceError wraps any failure during document splicing: malformed base
// XML, malformed fragment content, or I/O faults.
type SpliceError struct {
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *SpliceError) Error() string {
	return fmt.Sprintf("failed to splice XML configuration: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *SpliceError) Unwrap() error {
	return e.Err
}

// =============================================================================
// NODE TREE
// =============================================================================

// NodeKind discriminates the constructs an Element value can carry. The
// zero value is a regular tagged element, so element literals need no
// explicit kind.
type NodeKind int

const (
	// ElementNode is a regular tagged element.
	ElementNode NodeKind = iota

	// CommentNode is an XML comment; Text holds the comment content.
	CommentNode

	// ProcInstNode is a processing instruction; Name holds the target and
	// Text the instruction body.
	ProcInstNode

	// DirectiveNode is a markup declaration such as DOCTYPE; Text holds
	// everything between "<!" and ">".
	DirectiveNode
)

// Element is a generic XML node: its kind, name, attributes, text content,
// and ordered children. Only ElementNode values carry attributes and
// children.
type Element struct {
	// Kind selects the construct this node represents. The zero value is
	// ElementNode.
	Kind NodeKind

	// Name is the element tag name (or the processing-instruction
	// target). Namespace prefixes are not interpreted; the local name is
	// kept as written.
	Name string

	// Attrs holds the element attributes in document order.
	Attrs []xml.Attr

	// Text is the character data inside an element, the content of a
	// comment, the body of a processing instruction, or the payload of a
	// directive. Whitespace-only element text is treated as formatting
	// and dropped during parsing; comment and directive text is kept
	// verbatim.
	Text string

	// Children holds the child nodes in document order, including any
	// comments interleaved between child elements.
	Children []*Element
}

// Find locates a descendant element by a ./a/b tag path relative to e,
// selecting the first matching element child at each step. Non-element
// children (comments, processing instructions) are never matched.
//
// PARAMETERS:
//   - tagPath: The path expression, e.g. "./nat/outbound".
//
// RETURNS:
//   - The matching element, or nil when any step has no match.
func (e *Element) Find(tagPath string) *Element {
	tagPath = strings.TrimPrefix(tagPath, "./")
	if tagPath == "" {
		return e
	}

	current := e
	for _, segment := range strings.Split(tagPath, "/") {
		var next *Element
		for _, child := range current.Children {
			if child.Kind == ElementNode && child.Name == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}

	return current
}

// Document is a complete XML document: the root element plus any comments,
// processing instructions, or DOCTYPE declarations that appear before or
// after it.
type Document struct {
	// Prolog holds the nodes between the XML declaration and the root
	// element, in document order.
	Prolog []*Element

	// Root is the document's root element.
	Root *Element

	// Epilog holds the nodes after the root element's end tag.
	Epilog []*Element
}

// Find locates a descendant element by a ./a/b tag path relative to the
// document root.
func (d *Document) Find(tagPath string) *Element {
	return d.Root.Find(tagPath)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads a well-formed XML document into a Document, preserving
// comments, processing instructions, and DOCTYPE declarations wherever they
// appear.
//
// PARAMETERS:
//   - r: The document source.
//
// RETURNS:
//   - The parsed document.
//   - An error if the document is malformed or has no root element.
func Parse(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	document := &Document{}
	var stack []*Element

	// append places a non-element node at the current position: inside
	// the open element, or in the document prolog/epilog.
	appendNode := func(node *Element) {
		switch {
		case len(stack) > 0:
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		case document.Root == nil:
			document.Prolog = append(document.Prolog, node)
		default:
			document.Epilog = append(document.Epilog, node)
		}
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			element := &Element{
				Name:  t.Name.Local,
				Attrs: copyAttrs(t.Attr),
			}
			if len(stack) == 0 {
				if document.Root != nil {
					return nil, fmt.Errorf("malformed XML: multiple root elements")
				}
				document.Root = element
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, element)
			}
			stack = append(stack, element)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			// Whitespace-only runs are indentation from the previous
			// serialization and are rebuilt by the writer.
			text := strings.TrimSpace(string(t))
			if text != "" && len(stack) > 0 {
				stack[len(stack)-1].Text += text
			}

		case xml.Comment:
			appendNode(&Element{Kind: CommentNode, Text: string(t)})

		case xml.ProcInst:
			// The XML declaration itself is rebuilt by the writer.
			if t.Target == "xml" {
				continue
			}
			appendNode(&Element{Kind: ProcInstNode, Name: t.Target, Text: string(t.Inst)})

		case xml.Directive:
			appendNode(&Element{Kind: DirectiveNode, Text: string(t)})
		}
	}

	if document.Root == nil {
		return nil, fmt.Errorf("malformed XML: no root element")
	}

	return document, nil
}

// ParseFile parses the XML document at path.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XML file %s: %w", path, err)
	}
	defer file.Close()

	document, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML file %s: %w", path, err)
	}

	return document, nil
}

// ParseFragment parses a flat sequence of sibling elements (a rendered
// fragment) by wrapping it in a synthetic root and returning that root's
// children.
//
// PARAMETERS:
//   - content: The raw fragment text.
//
// RETURNS:
//   - The fragment's top-level nodes in order.
//   - An error if the content is not well-formed once wrapped.
func ParseFragment(content []byte) ([]*Element, error) {
	var wrapped bytes.Buffer
	wrapped.WriteString("<root>")
	wrapped.Write(content)
	wrapped.WriteString("</root>")

	document, err := Parse(&wrapped)
	if err != nil {
		return nil, fmt.Errorf("malformed fragment content: %w", err)
	}

	return document.Root.Children, nil
}

// copyAttrs detaches attribute slices from the decoder's internal buffer.
func copyAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	copied := make([]xml.Attr, len(attrs))
	copy(copied, attrs)
	return copied
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// Serialize writes the document as pretty-printed UTF-8 with an XML
// declaration and two-space indentation.
func Serialize(w io.Writer, document *Document) error {
	var buffer bytes.Buffer
	serializeDocument(&buffer, document)

	_, err := w.Write(buffer.Bytes())
	return err
}

// WriteFile serializes the document to path, overwriting any existing
// file. The write happens in one pass after full in-memory serialization,
// so a serialization fault never leaves a partially written document.
func WriteFile(path string, document *Document) error {
	var buffer bytes.Buffer
	serializeDocument(&buffer, document)

	if err := os.WriteFile(path, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write XML file %s: %w", path, err)
	}

	return nil
}

// serializeDocument writes the declaration, prolog, root, and epilog.
func serializeDocument(buffer *bytes.Buffer, document *Document) {
	buffer.WriteString(xml.Header)
	for _, node := range document.Prolog {
		writeElement(buffer, node, 0)
	}
	writeElement(buffer, document.Root, 0)
	for _, node := range document.Epilog {
		writeElement(buffer, node, 0)
	}
}

// writeElement writes one node to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element *Element, level int) {
	indent := strings.Repeat("  ", level)

	switch element.Kind {
	case CommentNode:
		buffer.WriteString(indent)
		buffer.WriteString("<!--")
		buffer.WriteString(element.Text)
		buffer.WriteString("-->\n")
		return

	case ProcInstNode:
		buffer.WriteString(indent)
		buffer.WriteString("<?")
		buffer.WriteString(element.Name)
		if element.Text != "" {
			buffer.WriteString(" ")
			buffer.WriteString(element.Text)
		}
		buffer.WriteString("?>\n")
		return

	case DirectiveNode:
		buffer.WriteString(indent)
		buffer.WriteString("<!")
		buffer.WriteString(element.Text)
		buffer.WriteString(">\n")
		return
	}

	buffer.WriteString(indent)
	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	for _, attr := range element.Attrs {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value)))
	}

	// Self-closing tag for empty elements.
	if len(element.Children) == 0 && element.Text == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		// Simple element with a text value.
		buffer.WriteString(escapeXML(element.Text))
	} else {
		if element.Text != "" {
			buffer.WriteString(escapeXML(element.Text))
		}
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, level+1)
		}

		buffer.WriteString(indent)
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML text and attribute values.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// =============================================================================
// SPLICING
// =============================================================================

// InjectFragments splices fragment files into the document at docPath.
//
// PARAMETERS:
//   - docPath: The XML document to modify in place.
//   - tagPath: The ./a/b path of the injection target.
//   - fragmentPaths: Fragment files to inject, processed in order. Files
//     that do not exist are skipped. When two fragments target the same
//     path in one call, the second appends after the first.
//
// BEHAVIOR:
//   The target element's existing children are removed (destructive), then
//   every fragment's top-level elements are appended as new children.
//   Comments and other non-element nodes elsewhere in the document are
//   preserved. A missing target path reserializes the document unchanged
//   and raises no error. The document write is the last step, after all
//   in-memory mutation, so a failed splice never leaves a half-written
//   file.
//
// RETURNS:
//   - A *SpliceError wrapping the cause on malformed XML, malformed
//     fragment content, or I/O failure.
func InjectFragments(docPath, tagPath string, fragmentPaths []string) error {
	document, err := ParseFile(docPath)
	if err != nil {
		return &SpliceError{Err: err}
	}

	target := document.Find(tagPath)
	if target != nil {
		// Destructive replacement: drop existing children and stale text.
		target.Children = nil
		target.Text = ""

		for _, fragmentPath := range fragmentPaths {
			content, err := os.ReadFile(fragmentPath)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return &SpliceError{Err: fmt.Errorf("failed to read fragment %s: %w", fragmentPath, err)}
			}

			elements, err := ParseFragment(content)
			if err != nil {
				return &SpliceError{Err: fmt.Errorf("fragment %s: %w", fragmentPath, err)}
			}

			target.Children = append(target.Children, elements...)
		}
	}

	if err := WriteFile(docPath, document); err != nil {
		return &SpliceError{Err: err}
	}

	return nil
}
