package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Record Serialization API
// =============================================================================

// ReadRecordsFile reads a JSON file containing a record batch.
// The file holds a JSON array of records.
func ReadRecordsFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRecords(f)
}

// ReadRecords decodes a JSON record batch from an io.Reader.
func ReadRecords(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	for i, rec := range recs {
		if rec.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		if recs[i].Kind == "" {
			recs[i].Kind = KindContent
		}
	}
	return recs, nil
}

// WriteRecordsFile writes a record batch to a JSON file.
// The file is created with 0644 permissions.
func WriteRecordsFile(recs []Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}
