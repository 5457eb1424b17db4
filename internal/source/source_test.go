package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr1hm/battlescape/internal/models"
)

const testCSV = `Battle,Year,Latitude,Longitude,War,Battle Type,Result
Trafalgar,1805,36.18,-6.03,Napoleonic Wars,Naval,British victory
Marathon,-490,38.1,23.9,Greco-Persian Wars,,Greek victory
,,,,,,
`

func TestReadCSV_Decode(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(testCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected blank row skipped, got %d rows", len(rows))
	}

	records, err := Decode(rows)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	first := records[0]
	if first.Battle != "Trafalgar" || first.Year != 1805 || first.Latitude != 36.18 || first.Longitude != -6.03 {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.BattleType != models.BattleTypeNaval {
		t.Errorf("expected header 'Battle Type' to map to battle type, got %q", first.BattleType)
	}
	if records[1].Year != -490 {
		t.Errorf("expected negative year, got %d", records[1].Year)
	}
	if records[1].Description != "" || records[1].WikiURL != "" {
		t.Error("expected missing text columns to default to empty")
	}
}

func TestDecode_FailsFast(t *testing.T) {
	tests := []struct {
		name   string
		row    Row
		column string
	}{
		{"bad year", Row{"battle": "x", "year": "eighteen", "latitude": "1", "longitude": "1"}, "year"},
		{"fractional year", Row{"battle": "x", "year": "1805.5", "latitude": "1", "longitude": "1"}, "year"},
		{"huge year", Row{"battle": "x", "year": "1e300", "latitude": "1", "longitude": "1"}, "year"},
		{"huge integer year", Row{"battle": "x", "year": "99999999999", "latitude": "1", "longitude": "1"}, "year"},
		{"infinite year", Row{"battle": "x", "year": "Inf", "latitude": "1", "longitude": "1"}, "year"},
		{"bad latitude", Row{"battle": "x", "year": "1805", "latitude": "north", "longitude": "1"}, "latitude"},
		{"missing longitude", Row{"battle": "x", "year": "1805", "latitude": "1"}, "longitude"},
		{"missing name", Row{"year": "1805", "latitude": "1", "longitude": "1"}, "battle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := Row{"battle": "ok", "year": "1800", "latitude": "0", "longitude": "0"}
			_, err := Decode([]Row{good, tt.row})

			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if decErr.Row != 2 || decErr.Column != tt.column {
				t.Errorf("expected row 2 column %s, got row %d column %s", tt.column, decErr.Row, decErr.Column)
			}
		})
	}
}

func TestDecode_IntegralFloatYear(t *testing.T) {
	records, err := Decode([]Row{{"battle": "x", "year": "1805.0", "latitude": "1", "longitude": "2"}})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if records[0].Year != 1805 {
		t.Errorf("expected 1805, got %d", records[0].Year)
	}
}

func TestDecode_NegativeYear(t *testing.T) {
	records, err := Decode([]Row{{"battle": "Marathon", "year": "-490", "latitude": "38.1", "longitude": "23.9"}})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if records[0].Year != -490 {
		t.Errorf("expected -490, got %d", records[0].Year)
	}
}

func TestDecode_NoRows(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestCSVProvider_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battles.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	rows, err := NewCSVProvider(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	if _, err := NewCSVProvider(filepath.Join(t.TempDir(), "missing.csv")).Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCSVProvider_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(testCSV))
	}))
	defer srv.Close()

	rows, err := NewCSVProvider(srv.URL + "/export").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	if _, err := NewCSVProvider(srv.URL + "/gone").Fetch(context.Background()); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestSampleProvider(t *testing.T) {
	rows, err := SampleProvider{}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	records, err := Decode(rows)
	if err != nil {
		t.Fatalf("sample data does not decode: %v", err)
	}
	if len(records) < 10 {
		t.Errorf("expected a usable sample dataset, got %d records", len(records))
	}
}

type fakeReader struct {
	values [][]interface{}
	err    error
}

func (f *fakeReader) ReadSheet(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	return f.values, f.err
}

func TestSheetsProvider(t *testing.T) {
	reader := &fakeReader{values: [][]interface{}{
		{"Battle", "Year", "Latitude", "Longitude", "War", "Battle_Type"},
		{"Midway", float64(1942), 28.2, -177.35, "Second World War", "Naval"},
		{"Britain", "1940", 51.5, -0.117, "Second World War"},
	}}
	p := &SheetsProvider{Reader: reader, SpreadsheetID: "id", Range: "Sheet1"}

	rows, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	records, err := Decode(rows)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if records[0].Year != 1942 || records[0].Longitude != -177.35 {
		t.Errorf("unexpected record: %+v", records[0])
	}
	if records[1].BattleType != "" {
		t.Errorf("expected short row padded with empty battle type, got %q", records[1].BattleType)
	}

	reader.err = errors.New("quota exceeded")
	if _, err := p.Fetch(context.Background()); err == nil {
		t.Error("expected reader error to propagate")
	}
}

func TestCell_String(t *testing.T) {
	tests := []struct {
		raw  interface{}
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{float64(1805), "1805"},
		{-6.033, "-6.033"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := NewCell(tt.raw).String(); got != tt.want {
			t.Errorf("NewCell(%v).String(): expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}
