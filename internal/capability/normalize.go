package capability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// page is one decoded listing response.
type page struct {
	entries    []map[string]any
	nextCursor string
}

// Decode parses a JSON object preserving number literals as json.Number,
// so large integers and exact decimals survive being relayed.
func Decode(raw json.RawMessage) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func decodeInto(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// normalizePage turns a listing response into an ordered sequence.
//
// Accepted shapes:
//
//	[ {...}, {...} ]
//	{ "<key>": [ {...}, {...} ], "nextCursor": "..." }
//	{ "<key>": { "a": {...}, "b": {...} } }
//
// A keyed mapping contributes its values in document order. A response
// object without key is an empty listing.
func normalizePage(raw json.RawMessage, key string) (page, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return page{}, nil
	}

	if trimmed[0] == '[' {
		entries, err := decodeSequence(trimmed)
		return page{entries: entries}, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return page{}, fmt.Errorf("failed to decode %s listing: %w", key, err)
	}

	var p page
	if c, ok := envelope["nextCursor"]; ok {
		// A non-string cursor ends pagination.
		_ = json.Unmarshal(c, &p.nextCursor)
	}

	body := bytes.TrimSpace(envelope[key])
	switch {
	case len(body) == 0 || bytes.Equal(body, []byte("null")):
		return p, nil
	case body[0] == '[':
		entries, err := decodeSequence(body)
		if err != nil {
			return page{}, fmt.Errorf("failed to decode %s listing: %w", key, err)
		}
		p.entries = entries
	case body[0] == '{':
		entries, err := decodeOrderedValues(body)
		if err != nil {
			return page{}, fmt.Errorf("failed to decode %s listing: %w", key, err)
		}
		p.entries = entries
	default:
		return page{}, fmt.Errorf("failed to decode %s listing: unexpected %s value", key, body[:1])
	}
	return p, nil
}

func decodeSequence(raw []byte) ([]map[string]any, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	return decodeEntries(elems)
}

// decodeOrderedValues returns the values of a JSON object in the order
// their keys appear in the document.
func decodeOrderedValues(raw []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return decodeEntries(elems)
}

func decodeEntries(elems []json.RawMessage) ([]map[string]any, error) {
	entries := make([]map[string]any, 0, len(elems))
	for i, elem := range elems {
		var entry map[string]any
		if err := decodeInto(elem, &entry); err != nil {
			return nil, fmt.Errorf("entry %d is not an object: %w", i, err)
		}
		if entry == nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
