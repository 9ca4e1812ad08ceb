// Package export writes the logbook in the formats offered for download
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"farm-assistant/internal/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the logbook in xlsx exports
const SheetName = "Logbook"

var header = []string{"id", "type", "date", "title", "manual_logs", "follow_ups", "last_action", "notes"}

func row(e models.Entry) []string {
	lastAction := ""
	if n := len(e.ManualLogs); n > 0 {
		last := e.ManualLogs[n-1]
		lastAction = fmt.Sprintf("%s %s", last.Date.Format(time.DateOnly), last.ActionType)
	}
	return []string{
		e.ID,
		string(e.Type),
		e.Date.Format(time.RFC3339),
		e.Title(),
		strconv.Itoa(len(e.ManualLogs)),
		strconv.Itoa(len(e.FollowUps)),
		lastAction,
		e.Notes,
	}
}

// WriteCSV writes one row per entry
func WriteCSV(w io.Writer, entries []models.Entry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		if err := writer.Write(row(e)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the full entries, indented
func WriteJSON(w io.Writer, entries []models.Entry) error {
	if entries == nil {
		entries = []models.Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// WriteXLSX writes a workbook with one row per entry
func WriteXLSX(w io.Writer, entries []models.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, e := range entries {
		if err := setRow(f, i+2, row(e)); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 38); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", n, err)
	}
	return nil
}
