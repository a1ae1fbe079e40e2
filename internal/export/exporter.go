package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyreports/internal/models"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// ParseFormat accepts csv, json and xlsx in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case CSV, JSON, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FormatFromPath infers the format from the file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Sheet is a header and its rows, the common shape of every export
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ItemsSheet lays lookup items out one per row
func ItemsSheet(table string, items []models.LookupItem) Sheet {
	sheet := Sheet{
		Name:   table,
		Header: []string{"ID", "Name", "Complete Name", "Level", "Parent", "Entity", "Recursive", "Comment"},
		Rows:   make([][]string, 0, len(items)),
	}
	for _, item := range items {
		sheet.Rows = append(sheet.Rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Name,
			item.DisplayName(),
			strconv.Itoa(item.Level),
			strconv.FormatInt(item.ParentID, 10),
			strconv.FormatInt(item.EntityID, 10),
			strconv.FormatBool(item.Recursive),
			item.Comment,
		})
	}
	return sheet
}

// ResultSheet lays out the rows of a report query
func ResultSheet(name string, result models.QueryResult) Sheet {
	return Sheet{Name: name, Header: result.Columns, Rows: result.Rows}
}

// Write encodes sheet to w in the given format
func Write(w io.Writer, sheet Sheet, format Format) error {
	switch format {
	case CSV:
		return writeCSV(w, sheet)
	case JSON:
		return writeJSON(w, sheet)
	case XLSX:
		return writeXLSX(w, sheet)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ToFile writes sheet to path, picking the format from the extension
func ToFile(sheet Sheet, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Write(&buf, sheet, format); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}

func writeCSV(w io.Writer, sheet Sheet) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(sheet.Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range sheet.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeJSON emits an array of objects keyed by the header
func writeJSON(w io.Writer, sheet Sheet) error {
	records := make([]map[string]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		record := make(map[string]string, len(sheet.Header))
		for i, column := range sheet.Header {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func writeXLSX(w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sheetName(sheet.Name)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}

	if len(sheet.Header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
			return err
		}
	}

	for i, row := range sheet.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("failed to write XLSX row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

// sheetName fits the 31 character limit and drops characters Excel rejects
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		s = "Export"
	}
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}
