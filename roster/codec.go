package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SkippedEntry records one roster document entry that could not be decoded.
// Index is the position in the stored array, or -1 when the whole document
// was unreadable.
type SkippedEntry struct {
	Index  int
	Reason string
}

// ParseDocument decodes a stored roster document. It favors availability
// over strictness: nil or empty input yields an empty roster, an
// unparseable document yields an empty roster, and entries missing
// required fields are dropped individually. Whatever was skipped is
// reported so the caller can log it; ParseDocument itself never fails.
func ParseDocument(raw []byte) ([]CircleMember, []SkippedEntry) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, []SkippedEntry{{Index: -1, Reason: fmt.Sprintf("document is not a JSON array: %v", err)}}
	}

	var (
		members []CircleMember
		skipped []SkippedEntry
	)
	for i, entry := range entries {
		var m CircleMember
		if err := json.Unmarshal(entry, &m); err != nil {
			skipped = append(skipped, SkippedEntry{Index: i, Reason: err.Error()})
			continue
		}
		if reason := memberSchemaError(m); reason != "" {
			skipped = append(skipped, SkippedEntry{Index: i, Reason: reason})
			continue
		}
		members = append(members, m)
	}
	return members, skipped
}

// memberSchemaError returns a reason when a decoded entry is missing a
// required field, or "" when it is usable.
func memberSchemaError(m CircleMember) string {
	switch {
	case m.ID == "":
		return "missing id"
	case m.Name == "":
		return "missing name"
	case m.CleanDate.IsZero():
		return "missing clean_date"
	default:
		return ""
	}
}

// EncodeDocument encodes a roster for storage. It is the strict inverse of
// ParseDocument for well-formed rosters.
func EncodeDocument(members []CircleMember) ([]byte, error) {
	if members == nil {
		members = []CircleMember{}
	}
	data, err := json.Marshal(members)
	if err != nil {
		return nil, fmt.Errorf("encode roster: %w", err)
	}
	return data, nil
}
