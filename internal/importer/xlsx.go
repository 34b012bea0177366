package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Columns lists the spreadsheet headers the reader understands, in template order.
var Columns = []string{
	"id",
	"name_ar", "name_fr", "name_en",
	"specialty_ar", "specialty_fr", "specialty_en",
	"category", "street", "city", "lat", "lon",
	"accessible", "home_visit", "emergency_24x7", "verified", "claimed",
	"rating", "images",
}

// ReadXLSX parses the first sheet of a workbook. The first row holds column headers;
// headers are matched case-insensitively and unknown ones are ignored.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}

	out := make([]Row, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		cells := rows[i]
		if blank(cells) {
			continue
		}
		row, err := parseCells(header, cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		row.Source = i + 1
		out = append(out, row)
	}
	return out, nil
}

func parseCells(header map[string]int, cells []string) (Row, error) {
	get := func(col string) string {
		i, ok := header[col]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	row := Row{
		ID:         get("id"),
		Name:       localizedRow{Ar: get("name_ar"), Fr: get("name_fr"), En: get("name_en")},
		Specialty:  localizedRow{Ar: get("specialty_ar"), Fr: get("specialty_fr"), En: get("specialty_en")},
		Category:   get("category"),
		Address:    addressRow{Street: get("street"), City: get("city")},
		Accessible: truthy(get("accessible")),
		HomeVisit:  truthy(get("home_visit")),
		Emergency:  truthy(get("emergency_24x7")),
		Verified:   truthy(get("verified")),
		Claimed:    truthy(get("claimed")),
	}

	if v := get("rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Row{}, fmt.Errorf("invalid rating %q", v)
		}
		row.Rating = rating
	}

	lat, lon := get("lat"), get("lon")
	if lat != "" || lon != "" {
		la, errLat := strconv.ParseFloat(lat, 64)
		lo, errLon := strconv.ParseFloat(lon, 64)
		if errLat != nil || errLon != nil {
			return Row{}, fmt.Errorf("invalid coordinates %q, %q", lat, lon)
		}
		row.Location = &locationRow{Lat: la, Lon: lo}
	}

	if v := get("images"); v != "" {
		row.Images = strings.Split(v, ",")
	}
	return row, nil
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "x", "oui":
		return true
	}
	return false
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteTemplate writes an empty workbook whose header row lists Columns.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Providers"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
