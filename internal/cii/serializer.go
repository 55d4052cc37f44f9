package cii

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/jonaboe98/zugferd-api/internal/model"
)

// Serialize canonicalizes a document tree to UTF-8 bytes with an explicit
// encoding declaration. Output is deterministic: the same tree always
// yields byte-identical output. Text content is escaped by the writer;
// control characters outside the XML character range are rejected up
// front since party and line-item text is attacker-controlled input.
func Serialize(doc *etree.Document) ([]byte, error) {
	if root := doc.Root(); root != nil {
		if err := checkElement(root, root.Tag); err != nil {
			return nil, err
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document tree: %w", err)
	}
	return out, nil
}

func checkElement(e *etree.Element, path string) error {
	if err := checkText(e.Text(), path); err != nil {
		return err
	}
	for _, attr := range e.Attr {
		if err := checkText(attr.Value, path+"/@"+attr.Key); err != nil {
			return err
		}
	}
	for _, child := range e.ChildElements() {
		if err := checkElement(child, path+"/"+child.Tag); err != nil {
			return err
		}
	}
	return nil
}

// checkText rejects characters outside the XML 1.0 character range.
// Tab, CR and LF are the only permitted controls.
func checkText(s, path string) error {
	for i, r := range s {
		if isXMLChar(r) {
			continue
		}
		return &model.InvalidCharacterError{Path: path, Rune: r, Position: i}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
