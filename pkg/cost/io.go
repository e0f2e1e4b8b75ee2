package cost

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadRecords decodes a JSON array of cost records. A JSON null decodes as
// an empty slice. Records are not validated; see [Aggregate].
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// ReadRecordsFile reads cost records from a JSON file.
func ReadRecordsFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRecords(f)
}
