package items

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// NormalizedRecord maps every schema field name to a string value.
type NormalizedRecord map[string]string

// Normalize returns a copy with every schema field present. Extra keys are kept.
func (r NormalizedRecord) Normalize() NormalizedRecord {
	out := make(NormalizedRecord, len(targetSchema)+len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, f := range targetSchema {
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = ""
		}
	}
	return out
}

func (r NormalizedRecord) Get(field string) string {
	if r == nil {
		return ""
	}
	return r[field]
}

// NonEmptyJoin renders a source row the way reviewers see it: trimmed non-empty
// cells joined by ", ".
func NonEmptyJoin(row []string) string {
	parts := make([]string, 0, len(row))
	for _, cell := range row {
		if c := strings.TrimSpace(cell); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON writes schema fields first, in schema order, then any extra keys sorted.
func (r NormalizedRecord) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	keys := make([]string, 0, len(r))
	seen := make(map[string]bool, len(targetSchema))
	for _, f := range targetSchema {
		if _, ok := r[f.Name]; ok {
			keys = append(keys, f.Name)
			seen[f.Name] = true
		}
	}
	var extra []string
	for k := range r {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
