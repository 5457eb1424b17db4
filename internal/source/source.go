package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mr1hm/battlescape/internal/models"
)

var ErrNoRows = errors.New("record source returned no rows")

// Row is one source row keyed by normalised column name.
type Row map[string]string

// Provider fetches the raw battle table from wherever it lives.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]Row, error)
}

const (
	colBattle        = "battle"
	colYear          = "year"
	colLatitude      = "latitude"
	colLongitude     = "longitude"
	colWar           = "war"
	colBattleType    = "battle_type"
	colDescription   = "description"
	colBelligerentsA = "belligerents_a"
	colBelligerentsB = "belligerents_b"
	colCommandersA   = "commanders_a"
	colCommandersB   = "commanders_b"
	colResult        = "result"
	colWikiURL       = "wiki_url"
)

// DecodeError reports the first row that could not be turned into a record.
// Row numbers count data rows from 1, excluding the header.
type DecodeError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("row %d: column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NormalizeHeader maps "Battle Type", "battle-type" and "Battle_Type" to the
// same key.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

// RowsFromTable turns a header row plus data rows into Rows. Short rows are
// padded with empty values; fully blank rows are skipped.
func RowsFromTable(table [][]string) []Row {
	if len(table) == 0 {
		return nil
	}

	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = NormalizeHeader(h)
	}

	rows := make([]Row, 0, len(table)-1)
	for _, values := range table[1:] {
		row := make(Row, len(header))
		blank := true
		for i, col := range header {
			if col == "" {
				continue
			}
			var v string
			if i < len(values) {
				v = strings.TrimSpace(values[i])
			}
			if v != "" {
				blank = false
			}
			row[col] = v
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows
}

// Decode converts rows to records. It stops at the first bad row rather than
// dropping it.
func Decode(rows []Row) ([]models.BattleRecord, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	records := make([]models.BattleRecord, 0, len(rows))
	for i, row := range rows {
		n := i + 1

		if row[colBattle] == "" {
			return nil, &DecodeError{Row: n, Column: colBattle, Err: errors.New("battle name is required")}
		}
		year, err := parseYear(row[colYear])
		if err != nil {
			return nil, &DecodeError{Row: n, Column: colYear, Value: row[colYear], Err: err}
		}
		lat, err := parseCoordinate(row[colLatitude])
		if err != nil {
			return nil, &DecodeError{Row: n, Column: colLatitude, Value: row[colLatitude], Err: err}
		}
		lon, err := parseCoordinate(row[colLongitude])
		if err != nil {
			return nil, &DecodeError{Row: n, Column: colLongitude, Value: row[colLongitude], Err: err}
		}

		records = append(records, models.BattleRecord{
			ID:            i,
			Battle:        row[colBattle],
			Year:          year,
			Latitude:      lat,
			Longitude:     lon,
			War:           row[colWar],
			BattleType:    models.BattleType(row[colBattleType]),
			Description:   row[colDescription],
			BelligerentsA: row[colBelligerentsA],
			BelligerentsB: row[colBelligerentsB],
			CommandersA:   row[colCommandersA],
			CommandersB:   row[colCommandersB],
			Result:        row[colResult],
			WikiURL:       row[colWikiURL],
		})
	}
	return records, nil
}

// parseYear accepts integers and integral floats ("1805.0"), which is how
// spreadsheets sometimes export whole numbers. Years must fit in an int32.
func parseYear(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if f != math.Trunc(f) {
		return 0, errors.New("not a whole year")
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, errors.New("year out of range")
	}
	return int(f), nil
}

func parseCoordinate(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}
