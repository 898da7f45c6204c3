package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// listKeys are the envelope keys accepted around a structured list.
var listKeys = []string{"data", "rows", "articles"}

// DecodeJSON decodes a structured-list body: a JSON array of objects, or an
// object holding that array under "data", "rows" or "articles".
//
// Values are flattened to strings so the result matches what Decode produces
// for the same sheet. Elements that are not objects are reported as skipped.
// Only a body that is not valid JSON, or has no list, returns an error.
func DecodeJSON(data []byte) (DecodeResult, error) {
	res := DecodeResult{Records: []Record{}}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return res, nil
	}

	items, err := jsonItems(data)
	if err != nil {
		return res, err
	}

	seen := make(map[string]bool)
	for i, raw := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			res.Skipped = append(res.Skipped, SkippedRow{Row: i + 1, Reason: ReasonNotObject})
			continue
		}

		rec := make(Record, len(obj))
		for k, v := range obj {
			name := strings.TrimSpace(k)
			s, ok := jsonString(v)
			if !ok {
				continue
			}
			rec[name] = s
			if !seen[name] {
				seen[name] = true
				res.Header = append(res.Header, name)
			}
		}
		res.Records = append(res.Records, rec)
	}

	sort.Strings(res.Header)
	return res, nil
}

func jsonItems(data []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode json list: %w", err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode json envelope: %w", err)
	}
	for _, key := range listKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode json %q list: %w", key, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("decode json envelope: no %s array", strings.Join(listKeys, "/"))
}

// jsonString flattens a JSON value. Nulls report ok=false.
func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	case '{', '[':
		var b bytes.Buffer
		if err := json.Compact(&b, raw); err != nil {
			return "", false
		}
		return b.String(), true
	default:
		// numbers and booleans keep their literal text
		return string(raw), true
	}
}
