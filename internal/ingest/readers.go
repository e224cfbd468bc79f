// Package ingest reads occurrence source files of every supported kind
// into uniform header-keyed rows.
package ingest

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xuri/excelize/v2"
)

var occurrenceSuffixes = []string{
	".csv", ".csv.gz",
	".tsv", ".tsv.gz",
	".ndjson", ".ndjson.gz",
	".geojson", ".geojson.gz",
	".xlsx",
}

// EnumerateOccurrenceFiles lists the supported occurrence files in dir,
// sorted by name for deterministic processing order.
func EnumerateOccurrenceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read occurrence dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, suffix := range occurrenceSuffixes {
			if strings.HasSuffix(name, suffix) {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// ReadRows reads one occurrence file of any supported kind into
// header-keyed rows. CSV/TSV/NDJSON/GeoJSON may be gzip-compressed;
// xlsx reads the first sheet with blank cells defaulted to "".
func ReadRows(path string) ([]map[string]any, error) {
	name := strings.ToLower(path)

	if strings.HasSuffix(name, ".xlsx") {
		return readXLSX(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", path, err)
		}
		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", path, err)
		}
		name = strings.TrimSuffix(name, ".gz")
	}

	switch {
	case strings.HasSuffix(name, ".csv"):
		return readDelimited(data, ',')
	case strings.HasSuffix(name, ".tsv"):
		return readDelimited(data, '\t')
	case strings.HasSuffix(name, ".ndjson"):
		return readNDJSON(data), nil
	case strings.HasSuffix(name, ".geojson"):
		return readGeoJSON(data)
	}
	return nil, nil
}

func readDelimited(data []byte, comma rune) ([]map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []map[string]any
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip, never abort the file.
			continue
		}
		row := make(map[string]any, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = record[i]
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readNDJSON(data []byte) []map[string]any {
	var rows []map[string]any
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		var row map[string]any
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// readGeoJSON flattens a FeatureCollection into rows: feature properties
// plus the point coordinates. Non-point features yield rows without
// coordinates and fall out at the normalizer's coordinate gate.
func readGeoJSON(data []byte) ([]map[string]any, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	var rows []map[string]any
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		row := make(map[string]any, len(f.Properties)+2)
		for k, v := range f.Properties {
			row[k] = v
		}
		if pt, ok := f.Geometry.(orb.Point); ok {
			row["decimalLatitude"] = pt[1]
			row["decimalLongitude"] = pt[0]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readXLSX(path string) ([]map[string]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	header := all[0]
	var rows []map[string]any
	for _, record := range all[1:] {
		row := make(map[string]any, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = record[i]
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DetectSource infers the provider tag from the file name.
func DetectSource(path string) string {
	s := strings.ToLower(path)
	switch {
	case strings.Contains(s, "inat"):
		return "inat"
	case strings.Contains(s, "gbif"):
		return "gbif"
	case strings.Contains(s, "venommaps"):
		return "venommaps"
	default:
		return "other"
	}
}

// StableID derives a per-record identifier, preferring a source-provided
// occurrence ID over a (source, file, row-index) composite.
func StableID(source, occurrenceID string, rowIdx int, path string) string {
	if occurrenceID != "" {
		return source + ":" + occurrenceID
	}
	return fmt.Sprintf("%s:%s:%d", source, filepath.Base(path), rowIdx)
}
