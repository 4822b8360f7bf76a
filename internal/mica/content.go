package mica

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Content is Mica's free-form "content" field. Mica serves it as a JSON
// document encoded into a string; once normalized it holds the decoded value.
// Both forms are accepted on input and each is written back as it is held,
// except decoded strings, which are written encoded.
type Content struct {
	encoded string
	value   any
	decoded bool
	present bool
}

func NewEncodedContent(s string) Content {
	return Content{encoded: s, present: true}
}

func NewDecodedContent(v any) Content {
	return Content{value: v, decoded: true, present: true}
}

// Present reports whether the field was set to a non-null value.
func (c Content) Present() bool {
	return c.present
}

func (c Content) Decoded() bool {
	return c.decoded
}

// Value returns the decoded document. The second result is false until the
// content has been normalized.
func (c Content) Value() (any, bool) {
	return c.value, c.decoded
}

// Encoded returns the string form as received.
func (c Content) Encoded() (string, bool) {
	return c.encoded, c.present && !c.decoded
}

// Normalize decodes the string form in place. Already decoded content is left
// as is.
func (c *Content) Normalize() error {
	if !c.present || c.decoded {
		return nil
	}
	v, err := decodeValue([]byte(c.encoded))
	if err != nil {
		return err
	}
	c.value = v
	c.decoded = true
	c.encoded = ""
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	switch {
	case !c.present:
		return []byte("null"), nil
	case c.decoded:
		data, err := json.Marshal(c.value)
		if err != nil {
			return nil, err
		}
		// A bare JSON string reads back as the encoded form, so a decoded
		// string is written encoded.
		if _, isString := c.value.(string); isString {
			return json.Marshal(string(data))
		}
		return data, nil
	default:
		return json.Marshal(c.encoded)
	}
}

func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*c = Content{}
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = NewEncodedContent(s)
		return nil
	}
	v, err := decodeValue(trimmed)
	if err != nil {
		return err
	}
	*c = NewDecodedContent(v)
	return nil
}

// decodeValue keeps numbers as json.Number so that re-encoding is exact.
func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}
