package export

import (
	"fmt"
	"io"

	"countries/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Countries"

var header = []any{"ID", "Name", "Continent", "Population", "Capital", "Area", "Currency", "Language"}

// WriteXLSX writes countries as a single-sheet workbook. Missing values
// are left as empty cells.
func WriteXLSX(w io.Writer, countries []models.Country) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range countries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{c.ID, c.Name, c.Continent, orNil(c.Population), orNil(c.Capital), orNil(c.Area), orNil(c.Currency), orNil(c.Language)}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func orNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
