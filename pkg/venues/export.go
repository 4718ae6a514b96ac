package venues

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/michaelcolletti/venue-research-agent/pkg/fileutil"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatYAML = "yaml"
)

// ExportFormats lists the supported formats.
var ExportFormats = []string{FormatJSON, FormatCSV, FormatXLSX, FormatYAML}

// ExportRecord is the exported shape of a venue.
type ExportRecord struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	City           string   `json:"city" yaml:"city"`
	Region         string   `json:"region" yaml:"region"`
	State          string   `json:"state" yaml:"state"`
	VenueType      string   `json:"venue_type" yaml:"venue_type"`
	Capacity       int      `json:"capacity" yaml:"capacity"`
	Website        string   `json:"website" yaml:"website"`
	Phone          string   `json:"phone" yaml:"phone"`
	Email          string   `json:"email" yaml:"email"`
	Address        string   `json:"address" yaml:"address"`
	BookingContact string   `json:"booking_contact" yaml:"booking_contact"`
	Genres         []string `json:"genres" yaml:"genres"`
	Status         string   `json:"status" yaml:"status"`
	Rating         float64  `json:"rating" yaml:"rating"`
	FirstSeen      string   `json:"first_seen" yaml:"first_seen"`
	LastSeen       string   `json:"last_seen" yaml:"last_seen"`
}

var exportHeader = []string{
	"id", "name", "city", "region", "state", "venue_type", "capacity", "website",
	"phone", "email", "address", "booking_contact", "genres", "status", "rating",
	"first_seen", "last_seen",
}

func newExportRecord(v Venue) ExportRecord {
	genres := v.Genres
	if genres == nil {
		genres = []string{}
	}
	return ExportRecord{
		ID:             v.ID,
		Name:           v.Name,
		City:           v.City,
		Region:         v.Region,
		State:          v.State,
		VenueType:      v.VenueType,
		Capacity:       v.Capacity,
		Website:        v.Website,
		Phone:          v.Phone,
		Email:          v.Email,
		Address:        v.Address,
		BookingContact: v.BookingContact,
		Genres:         genres,
		Status:         v.Status,
		Rating:         v.Rating,
		FirstSeen:      v.FirstSeen,
		LastSeen:       v.LastSeen,
	}
}

func (r ExportRecord) row() []string {
	return []string{
		r.ID, r.Name, r.City, r.Region, r.State, r.VenueType, strconv.Itoa(r.Capacity),
		r.Website, r.Phone, r.Email, r.Address, r.BookingContact, strings.Join(r.Genres, ";"),
		r.Status, strconv.FormatFloat(r.Rating, 'f', -1, 64), r.FirstSeen, r.LastSeen,
	}
}

// ExportFileName returns venues_export_YYYYMMDD.<format>.
func ExportFileName(format string, now time.Time) string {
	return "venues_export_" + now.Format("20060102") + "." + format
}

// Export writes all active venues, ordered by region, city and name, to
// dir in format. It returns the path and the number of venues written.
func Export(ctx context.Context, s *Store, format, dir string, now time.Time) (string, int, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	write, ok := exporters[format]
	if !ok {
		return "", 0, fmt.Errorf("unsupported export format %q (expected one of %s)", format, strings.Join(ExportFormats, ", "))
	}

	venues, err := s.ListVenues(ctx, ListFilter{})
	if err != nil {
		return "", 0, err
	}
	records := make([]ExportRecord, 0, len(venues))
	for _, v := range venues {
		records = append(records, newExportRecord(v))
	}

	path := filepath.Join(dir, ExportFileName(format, now))
	if err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return write(w, records)
	}); err != nil {
		return "", 0, fmt.Errorf("exporting venues: %w", err)
	}
	return path, len(records), nil
}

var exporters = map[string]func(io.Writer, []ExportRecord) error{
	FormatJSON: writeJSON,
	FormatCSV:  writeCSV,
	FormatXLSX: writeXLSX,
	FormatYAML: writeYAML,
}

func writeJSON(w io.Writer, records []ExportRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeCSV(w io.Writer, records []ExportRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeYAML(w io.Writer, records []ExportRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

const xlsxSheet = "Venues"

func writeXLSX(w io.Writer, records []ExportRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}

	widths := make([]int, len(exportHeader))
	for i, h := range exportHeader {
		widths[i] = len(h)
	}
	for i, r := range records {
		cells := r.row()
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
			if len(c) > widths[j] {
				widths[j] = len(c)
			}
		}
		// Numbers stay numeric in the sheet.
		row[6] = r.Capacity
		row[14] = r.Rating

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last+"1", bold); err != nil {
		return err
	}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if width > 50 {
			width = 50
		}
		if err := f.SetColWidth(xlsxSheet, col, col, float64(width+2)); err != nil {
			return err
		}
	}

	return f.Write(w)
}
