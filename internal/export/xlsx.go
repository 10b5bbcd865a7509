package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fleetdesk/internal/domain"
)

const sheetName = "Bookings"

// XLSXSink writes record sets as a single-sheet workbook with a bold,
// frozen header row.
type XLSXSink struct{}

func NewXLSXSink() *XLSXSink { return &XLSXSink{} }

func (s *XLSXSink) WriteRecordSet(w io.Writer, set *domain.RecordSet) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	headerRow := make([]interface{}, 0, len(domain.RecordColumns)+len(metaColumns))
	for _, h := range header() {
		headerRow = append(headerRow, h)
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range set.Records {
		row := make([]interface{}, 0, len(headerRow))
		for _, cell := range recordRow(&set.Records[i]) {
			row = append(row, cell)
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("record %d cell ref: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheetName, cellRef, &row); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(headerRow))
		_ = f.SetCellStyle(sheetName, "A1", lastCol+"1", boldStyle)
	}
	_ = f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
