// Package record defines the immutable input contract for Starmap.
//
// A Record represents one content entity or its hub/index wrapper. Records
// arrive as a full-replacement batch supplied by a retrieval collaborator;
// this package never fetches or parses anything itself. The Index type builds
// the lookup tables every graph builder starts from.
package record

import "time"

// Kind classifies a record. Hub kinds group and reference other records;
// everything else is plain content.
type Kind string

// Well-known record kinds.
const (
	// KindIndex is a hub record whose role is to reference and order other records.
	KindIndex Kind = "index"
	// KindCollection is a hub record grouping records without a strict order.
	KindCollection Kind = "collection"
	// KindContent is a plain content record.
	KindContent Kind = "content"
)

// IsHub reports whether records of this kind act as hubs (group and
// reference other records).
func (k Kind) IsHub() bool {
	return k == KindIndex || k == KindCollection
}

// Reference is one ordered pointer from a record to another record.
type Reference struct {
	TargetID   string `json:"target_id"`
	TargetKind Kind   `json:"target_kind,omitempty"`
}

// Attributes is a multimap of attribute key to values (e.g. "tag" → topics,
// "mention" → identities). The zero value is usable for reads.
type Attributes map[string][]string

// Values returns all values for the given key, or nil if none exist.
func (a Attributes) Values(key string) []string {
	if a == nil {
		return nil
	}
	return a[key]
}

// Add appends a value under the given key.
func (a Attributes) Add(key, value string) {
	a[key] = append(a[key], value)
}

// Record is one immutable input item. Callers supply already-deduplicated,
// most-recent-per-identity records; this package does not resolve conflicts
// beyond last-write-wins indexing.
type Record struct {
	ID         string      `json:"id"`
	Kind       Kind        `json:"kind"`
	Author     string      `json:"author,omitempty"`
	References []Reference `json:"references,omitempty"`
	Attrs      Attributes  `json:"attrs,omitempty"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`
}

// IsHub reports whether the record is a hub/index record.
func (r Record) IsHub() bool { return r.Kind.IsHub() }
