package stocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// properties of the document.
const (
	attrStocks = "stocks"
	// attrLastUpdated is shared with the stock record.
)

// Document is the content of a stocks file: a list of stock records and the
// time of the last refresh.
type Document struct {
	Stocks      []*Stock
	LastUpdated string // YYYY-MM-DDTHH:MM:SSZ

	attrs object
}

// Find returns the stock with the given code, or nil.
func (d *Document) Find(code Code) *Stock {
	for _, s := range d.Stocks {
		if c, err := ParseCode(s.Code); err == nil && c == code {
			return s
		}
	}
	return nil
}

// DecodeDocument reads a stocks document.
//
// The only requirement on the content is a top-level object with a "stocks" array.
func DecodeDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	o, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("format error: %w", err)
	}
	raw, ok := o.get(attrStocks)
	if !ok {
		return nil, fmt.Errorf("format error: missing the property %q", attrStocks)
	}
	doc := &Document{attrs: o}
	if err := json.Unmarshal(raw, &doc.Stocks); err != nil {
		return nil, fmt.Errorf("format error: property %q must be an array of objects: %w", attrStocks, err)
	}
	if doc.Stocks == nil {
		return nil, fmt.Errorf("format error: property %q must be an array of objects", attrStocks)
	}
	for i, s := range doc.Stocks {
		if s == nil {
			return nil, fmt.Errorf("format error: %s[%d] is null", attrStocks, i)
		}
	}
	if raw, ok := o.get(attrLastUpdated); ok {
		_ = json.Unmarshal(raw, &doc.LastUpdated)
	}
	return doc, nil
}

// EncodeDocument writes the document as UTF-8 JSON, indented with two spaces
// and without escaping non-ASCII or HTML characters.
func EncodeDocument(w io.Writer, doc *Document) error {
	stocks := doc.Stocks
	if stocks == nil {
		stocks = []*Stock{}
	}
	raw, err := marshal(stocks)
	if err != nil {
		return fmt.Errorf("failed to encode stocks: %w", err)
	}
	override := map[string][]byte{attrStocks: raw}
	if doc.LastUpdated != "" {
		if override[attrLastUpdated], err = marshal(doc.LastUpdated); err != nil {
			return err
		}
	}
	compact, err := encodeObject(doc.attrs, override, []string{attrStocks, attrLastUpdated})
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return fmt.Errorf("failed to indent document: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}

// ReadFile decodes the document stored in a file.
func ReadFile(name string) (*Document, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := DecodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", name, err)
	}
	return doc, nil
}

// WriteFile encodes the document into a file, replacing its content.
//
// The document is fully encoded before the file is opened, so an encoding
// error leaves the file untouched.
func WriteFile(name string, doc *Document) error {
	var buf bytes.Buffer
	if err := EncodeDocument(&buf, doc); err != nil {
		return err
	}
	perm := os.FileMode(0644)
	if fi, err := os.Stat(name); err == nil {
		perm = fi.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(name, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("cannot write %q: %w", name, err)
	}
	return nil
}
