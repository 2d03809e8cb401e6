// Package export converts a discovery CSV sheet into a spreadsheet for
// outreach tracking.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/tealeg/xlsx"
)

// ToExcel reads a discovery CSV and writes it as a single-sheet xlsx file.
// The CSV's header row becomes the sheet's first row.
func ToExcel(csvPath, outputPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", csvPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", csvPath, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%s is empty", csvPath)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Influencers")
	if err != nil {
		return 0, err
	}

	for _, record := range records {
		row := sheet.AddRow()
		for _, field := range record {
			row.AddCell().Value = field
		}
	}

	if err := file.Save(outputPath); err != nil {
		return 0, fmt.Errorf("save %s: %w", outputPath, err)
	}
	return len(records) - 1, nil
}
