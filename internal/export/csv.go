// Package export renders record sets for dispatch teams: CSV for ingestion
// tooling, XLSX for the teams that work in spreadsheets. Both formats emit
// the canonical column order with explicit null markers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"fleetdesk/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// metaColumns are appended after the canonical booking columns.
var metaColumns = []string{"Confidence", "Recommendation"}

// CSVSink writes record sets as BOM-prefixed CSV.
type CSVSink struct{}

func NewCSVSink() *CSVSink { return &CSVSink{} }

// WriteRecordSet writes the header and one row per record.
func (s *CSVSink) WriteRecordSet(w io.Writer, set *domain.RecordSet) error {
	if _, err := w.Write(BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range set.Records {
		if err := cw.Write(recordRow(&set.Records[i])); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func header() []string {
	out := make([]string, 0, len(domain.RecordColumns)+len(metaColumns))
	for _, col := range domain.RecordColumns {
		out = append(out, domain.ColumnTitles[col])
	}
	return append(out, metaColumns...)
}

func recordRow(rec *domain.BookingRecord) []string {
	out := make([]string, 0, len(domain.RecordColumns)+len(metaColumns))
	for _, col := range domain.RecordColumns {
		out = append(out, rec.Get(col))
	}
	out = append(out, fmt.Sprintf("%.2f", rec.Confidence))
	if rec.Validation != nil {
		out = append(out, string(rec.Validation.Recommendation))
	} else {
		out = append(out, "")
	}
	return out
}
