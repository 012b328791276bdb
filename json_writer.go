package stocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// jsonObjectWriter helps construct a JSON object with a specific field order.
// Its zero value is ready to use.
type jsonObjectWriter struct {
	bytes.Buffer
	err error
}

// AppendRaw adds a key with an already encoded JSON value.
func (w *jsonObjectWriter) AppendRaw(key string, raw []byte) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	k, err := marshal(key)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal key %q: %w", key, err)
		return w
	}
	w.Write(k)
	w.WriteString(":")
	w.Write(bytes.TrimSpace(raw))
	w.WriteString(",")
	return w
}

// Append adds a new key-value pair to the JSON object. The value is marshaled
// without HTML escaping, so names like "A&B" are kept readable.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	valBytes, err := marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	return w.AppendRaw(key, valBytes)
}

// MarshalJSON finalizes the JSON object construction, wraps the content in
// braces, and returns the complete JSON byte slice. It satisfies the
// `json.Marshaler` interface.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}

	content := bytes.TrimSuffix(w.Bytes(), []byte(","))
	final := make([]byte, 0, len(content)+2)
	final = append(final, '{')
	final = append(final, content...)
	final = append(final, '}')

	return final, nil
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// attribute is a single property of a JSON object, with its value kept as read.
type attribute struct {
	key   string
	value json.RawMessage
}

// object is a JSON object whose properties keep the order of the source.
type object []attribute

// get returns the raw value of a property.
func (o object) get(key string) (json.RawMessage, bool) {
	for _, a := range o {
		if a.key == key {
			return a.value, true
		}
	}
	return nil, false
}

// decodeObject reads a JSON object without losing property order nor number formatting.
// Escaped strings are unescaped.
func decodeObject(data []byte) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}
	var o object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a property name, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		value, err := unescape(raw)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		o = append(o, attribute{key, value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected content after the JSON object")
	}
	return o, nil
}

// unescape returns the compact form of a JSON value with its strings written
// as plain UTF-8 ("\u8d35" becomes "贵", "\u0026" becomes "&"). Numbers are
// kept as written.
func unescape(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var buf bytes.Buffer
	if err := writeValue(&buf, dec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeValue copies the next value of dec into buf.
func writeValue(buf *bytes.Buffer, dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case json.Delim:
		buf.WriteByte(byte(t))
		for i := 0; dec.More(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			if t == '{' {
				key, err := dec.Token()
				if err != nil {
					return err
				}
				k, err := marshal(key)
				if err != nil {
					return err
				}
				buf.Write(k)
				buf.WriteByte(':')
			}
			if err := writeValue(buf, dec); err != nil {
				return err
			}
		}
		end, err := dec.Token()
		if err != nil {
			return err
		}
		buf.WriteByte(byte(end.(json.Delim)))
	case string:
		b, err := marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
	case json.Number:
		buf.WriteString(t.String())
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case nil:
		buf.WriteString("null")
	}
	return nil
}

// encodeObject writes the properties of o in order. Values found in override
// replace the raw ones; override keys missing from o are appended in the order
// given by extra.
func encodeObject(o object, override map[string][]byte, extra []string) ([]byte, error) {
	var w jsonObjectWriter
	seen := make(map[string]bool, len(o))
	for _, a := range o {
		seen[a.key] = true
		if v, ok := override[a.key]; ok {
			w.AppendRaw(a.key, v)
			continue
		}
		w.AppendRaw(a.key, a.value)
	}
	for _, key := range extra {
		if v, ok := override[key]; ok && !seen[key] {
			w.AppendRaw(key, v)
		}
	}
	return w.MarshalJSON()
}
