package report

import (
	"encoding/json"
	"fmt"

	"github.com/harrison/mmdcheck/internal/filelock"
	"github.com/harrison/mmdcheck/internal/models"
)

// WriteInvalid writes the invalid records of report to path as an indented
// JSON array in input order. Nothing is written when every artifact is valid;
// the returned bool reports whether the file was written.
func WriteInvalid(path string, report *models.RunReport) (bool, error) {
	records := report.InvalidRecords()
	if len(records) == 0 {
		return false, nil
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to encode invalid records: %w", err)
	}
	if err := filelock.WriteLocked(path, data); err != nil {
		return false, fmt.Errorf("failed to write side file %s: %w", path, err)
	}
	return true, nil
}
