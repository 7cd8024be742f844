package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/turismolocal/poiscan/internal/model"
)

// naToken marks numeric fields the source never provided.
const naToken = "N/A"

// columns is the fixed 20-column output schema. Order is part of the file
// format contract with downstream consumers.
var columns = []string{
	"source", "primaryType", "name", "types", "rating", "userRatingsTotal",
	"priceLevel", "priceRangeMin", "priceRangeMax", "latitude", "longitude",
	"photoUri", "openingHours", "website", "phoneNational",
	"phoneInternational", "googleMapsUri", "formattedAddress",
	"businessCategory", "externalId",
}

// Header returns the fixed CSV header row.
func Header() string {
	return formatFields(columns)
}

// FormatRow serializes one record. Every field is double-quoted; literal
// quotes are doubled. Embedded commas and newlines rely on the quoting
// alone, no further sanitization.
func FormatRow(rec model.BusinessRecord) string {
	rating := naToken
	if rec.HasRating {
		rating = strconv.FormatFloat(rec.Rating, 'f', -1, 64)
	}
	ratingsTotal := naToken
	if rec.HasRatingsTotal {
		ratingsTotal = strconv.Itoa(rec.UserRatingsTotal)
	}

	return formatFields([]string{
		rec.Source,
		rec.PrimaryType,
		rec.Name,
		rec.Types,
		rating,
		ratingsTotal,
		rec.PriceLevel,
		rec.PriceRangeMin,
		rec.PriceRangeMax,
		strconv.FormatFloat(rec.Lat, 'f', -1, 64),
		strconv.FormatFloat(rec.Lng, 'f', -1, 64),
		rec.PhotoURI,
		rec.OpeningHours,
		rec.Website,
		rec.PhoneNational,
		rec.PhoneInternational,
		rec.GoogleMapsURI,
		rec.FormattedAddress,
		rec.BusinessCategory,
		rec.ExternalID,
	})
}

func formatFields(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// ParseRow parses one serialized row back into a record. Inverse of
// FormatRow for any field content.
func ParseRow(line string) (model.BusinessRecord, error) {
	r := csv.NewReader(strings.NewReader(line))
	fields, err := r.Read()
	if err != nil {
		return model.BusinessRecord{}, fmt.Errorf("parsing row: %w", err)
	}
	return fieldsToRecord(fields)
}

func fieldsToRecord(fields []string) (model.BusinessRecord, error) {
	if len(fields) != len(columns) {
		return model.BusinessRecord{}, fmt.Errorf("expected %d columns, got %d", len(columns), len(fields))
	}

	rec := model.BusinessRecord{
		Source:             fields[0],
		PrimaryType:        fields[1],
		Name:               fields[2],
		Types:              fields[3],
		PriceLevel:         fields[6],
		PriceRangeMin:      fields[7],
		PriceRangeMax:      fields[8],
		PhotoURI:           fields[11],
		OpeningHours:       fields[12],
		Website:            fields[13],
		PhoneNational:      fields[14],
		PhoneInternational: fields[15],
		GoogleMapsURI:      fields[16],
		FormattedAddress:   fields[17],
		BusinessCategory:   fields[18],
		ExternalID:         fields[19],
	}

	if fields[4] != naToken {
		rating, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return model.BusinessRecord{}, fmt.Errorf("parsing rating %q: %w", fields[4], err)
		}
		rec.Rating = rating
		rec.HasRating = true
	}
	if fields[5] != naToken {
		total, err := strconv.Atoi(fields[5])
		if err != nil {
			return model.BusinessRecord{}, fmt.Errorf("parsing ratings total %q: %w", fields[5], err)
		}
		rec.UserRatingsTotal = total
		rec.HasRatingsTotal = true
	}

	lat, err := strconv.ParseFloat(fields[9], 64)
	if err != nil {
		return model.BusinessRecord{}, fmt.Errorf("parsing latitude %q: %w", fields[9], err)
	}
	lng, err := strconv.ParseFloat(fields[10], 64)
	if err != nil {
		return model.BusinessRecord{}, fmt.Errorf("parsing longitude %q: %w", fields[10], err)
	}
	rec.Lat, rec.Lng = lat, lng

	return rec, nil
}

// ReadFile loads a previously written dataset. The header row is skipped.
func ReadFile(path string) ([]model.BusinessRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var records []model.BusinessRecord
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == columns[0] {
			continue
		}
		rec, err := fieldsToRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes a dataset as <name>_<unixSeconds>.csv under dir and
// returns the full path.
func WriteRecords(dir, name string, records []model.BusinessRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%d.csv", name, time.Now().Unix()))
	var buf bytes.Buffer
	buf.WriteString(Header())
	buf.WriteByte('\n')
	for _, rec := range records {
		buf.WriteString(FormatRow(rec))
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing dataset: %w", err)
	}
	return path, nil
}

// Merge combines a previously written Google dataset with freshly scanned
// INEGI records. Google rows pass through byte-for-byte minus their header;
// INEGI records are deduplicated among themselves and appended. IDs are
// never reconciled across sources, so a venue present in both directories
// keeps one row per source.
func Merge(googlePath string, inegiRecords []model.BusinessRecord, dir, name string) (string, error) {
	raw, err := os.ReadFile(googlePath)
	if err != nil {
		return "", fmt.Errorf("reading google dataset: %w", err)
	}

	body := raw
	if idx := bytes.IndexByte(raw, '\n'); idx >= 0 {
		body = raw[idx+1:]
	} else {
		body = nil // header-only file
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%d.csv", name, time.Now().Unix()))
	var buf bytes.Buffer
	buf.WriteString(Header())
	buf.WriteByte('\n')
	buf.Write(body)
	if len(body) > 0 && body[len(body)-1] != '\n' {
		buf.WriteByte('\n')
	}

	seen := make(map[string]struct{}, len(inegiRecords))
	for _, rec := range inegiRecords {
		if rec.ExternalID == "" {
			continue
		}
		if _, dup := seen[rec.ExternalID]; dup {
			continue
		}
		seen[rec.ExternalID] = struct{}{}
		buf.WriteString(FormatRow(rec))
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing merged dataset: %w", err)
	}
	return path, nil
}

// MergeFiles merges two existing datasets from disk.
func MergeFiles(googlePath, inegiPath, dir, name string) (string, error) {
	inegi, err := ReadFile(inegiPath)
	if err != nil {
		return "", err
	}
	return Merge(googlePath, inegi, dir, name)
}
