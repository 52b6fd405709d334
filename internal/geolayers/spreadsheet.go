package geolayers

import (
	"fmt"
	"io"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Reportes"

var reportHeader = []string{"ID", "Tipo de evento", "Población afectada", "Latitud", "Longitud", "Zona", "Descripción", "Fecha"}

var reportColumnWidths = []float64{8, 20, 18, 12, 12, 14, 50, 24}

// WriteReportsXLSX writes every report as one spreadsheet row.
func WriteReportsXLSX(w io.Writer, reports []domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, h := range reportHeader {
		if err := setCell(f, i+1, 1, h); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(reportSheet, col, col, reportColumnWidths[i]); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetCellStyle(reportSheet, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}

	for i, r := range reports {
		row := []any{r.ID, r.EventTypeOrUnknown(), r.AffectedPopulation, nil, nil, r.Zone, r.Description, nil}
		if r.Latitude != nil {
			row[3] = *r.Latitude
		}
		if r.Longitude != nil {
			row[4] = *r.Longitude
		}
		if !r.Timestamp.IsZero() {
			row[7] = r.Timestamp.UTC().Format("2006-01-02 15:04:05")
		}
		for col, v := range row {
			if v == nil {
				continue
			}
			if err := setCell(f, col+1, i+2, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(reportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write spreadsheet: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(reportSheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
