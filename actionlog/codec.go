package actionlog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Decodes a stored log value into entries. Absent or malformed input yields an empty (non-nil) slice; individual elements without a finite numeric timestamp are dropped.
func Decode(raw []byte) []Entry {
	out := []Entry{}
	var elems []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &elems) != nil {
		return out
	}
	for _, elem := range elems {
		if e, ok := decodeEntry(elem); ok {
			out = append(out, e)
		}
	}
	return out
}

func decodeEntry(raw json.RawMessage) (Entry, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Entry{}, false
	}
	switch raw[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Entry{}, false
		}
		t, ok := decodeTimestamp(obj["t"])
		if !ok {
			return Entry{}, false
		}
		return Entry{
			T:    t,
			A:    decodeString(obj["a"]),
			U:    decodeString(obj["u"]),
			R:    decodeString(obj["r"]),
			User: decodeString(obj["user"]),
		}, true
	default:
		// legacy bare timestamp
		t, ok := decodeTimestamp(raw)
		if !ok {
			return Entry{}, false
		}
		return Entry{T: t}, true
	}
}

func decodeTimestamp(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// non-string values decode to ""
func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Decodes a stored JSON array of strings, skipping non-string elements and duplicates. Order of first appearance is kept.
func DecodeStrings(raw []byte) []string {
	out := []string{}
	var elems []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &elems) != nil {
		return out
	}
	seen := make(map[string]bool, len(elems))
	for _, elem := range elems {
		// null unmarshals into a string without error
		if e := bytes.TrimSpace(elem); len(e) == 0 || e[0] != '"' {
			continue
		}
		var s string
		if err := json.Unmarshal(elem, &s); err != nil {
			continue
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Decodes a stored action counter map. Non-numeric or non-finite values are dropped. Returns nil if raw is not a JSON object.
func DecodeCounts(raw []byte) map[string]int {
	var obj map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil || obj == nil {
		return nil
	}
	out := make(map[string]int, len(obj))
	for k, v := range obj {
		n, ok := decodeTimestamp(v)
		if !ok {
			continue
		}
		out[k] = int(n)
	}
	return out
}
