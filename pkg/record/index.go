package record

// Index holds the id→record and referenced-id lookup tables a graph build
// starts from. Build one per batch with NewIndex; it is a pure transform and
// never fails.
type Index struct {
	byID       map[string]Record
	referenced map[string]bool
	order      []string // record ids in first-seen input order
}

// NewIndex builds lookup tables from a record batch.
// Duplicate ids are last-write-wins: the later record replaces the earlier
// one but keeps its original position in input order.
func NewIndex(records []Record) *Index {
	ix := &Index{
		byID:       make(map[string]Record, len(records)),
		referenced: make(map[string]bool),
	}
	for _, r := range records {
		if _, seen := ix.byID[r.ID]; !seen {
			ix.order = append(ix.order, r.ID)
		}
		ix.byID[r.ID] = r
	}
	for _, r := range ix.byID {
		for _, ref := range r.References {
			ix.referenced[ref.TargetID] = true
		}
	}
	return ix
}

// Resolve returns the record with the given id and true, or the zero Record
// and false if the id is not in the batch.
func (ix *Index) Resolve(id string) (Record, bool) {
	r, ok := ix.byID[id]
	return r, ok
}

// IsReferenced reports whether any record in the batch references id.
func (ix *Index) IsReferenced(id string) bool { return ix.referenced[id] }

// Len returns the number of distinct record ids in the batch.
func (ix *Index) Len() int { return len(ix.byID) }

// Records returns all records in first-seen input order.
func (ix *Index) Records() []Record {
	out := make([]Record, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.byID[id])
	}
	return out
}

// RootHubs returns hub-kind records that no other record references,
// in first-seen input order. These are the entry points for the
// sequential builder's depth-first walk.
func (ix *Index) RootHubs() []Record {
	var roots []Record
	for _, id := range ix.order {
		r := ix.byID[id]
		if r.IsHub() && !ix.referenced[r.ID] {
			roots = append(roots, r)
		}
	}
	return roots
}

// Hubs returns every hub-kind record in first-seen input order,
// referenced or not. The star builder centers a star on each.
func (ix *Index) Hubs() []Record {
	var hubs []Record
	for _, id := range ix.order {
		r := ix.byID[id]
		if r.IsHub() {
			hubs = append(hubs, r)
		}
	}
	return hubs
}
