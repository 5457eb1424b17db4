package source

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ValuesReader reads a cell range. The Sheets API hands back
// [][]interface{}; Cell keeps that confined to this file.
type ValuesReader interface {
	ReadSheet(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

// SheetsClient implements ValuesReader with the Google Sheets API.
type SheetsClient struct {
	service *sheets.Service
}

// NewSheetsClient authenticates with a service-account credentials file.
func NewSheetsClient(ctx context.Context, credentialsFile string) (*SheetsClient, error) {
	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsClient{service: service}, nil
}

func (c *SheetsClient) ReadSheet(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	return resp.Values, nil
}

type SheetsProvider struct {
	Reader        ValuesReader
	SpreadsheetID string
	Range         string
}

func (p *SheetsProvider) Name() string {
	return "sheets"
}

func (p *SheetsProvider) Fetch(ctx context.Context) ([]Row, error) {
	values, err := p.Reader.ReadSheet(ctx, p.SpreadsheetID, p.Range)
	if err != nil {
		return nil, err
	}

	table := make([][]string, len(values))
	for i, row := range values {
		table[i] = make([]string, len(row))
		for j, v := range row {
			table[i][j] = NewCell(v).String()
		}
	}
	return RowsFromTable(table), nil
}

// Cell wraps a raw Sheets API value.
type Cell struct {
	raw interface{}
}

func NewCell(raw interface{}) Cell {
	return Cell{raw: raw}
}

// String renders the value the way it would appear in a CSV export. Whole
// numbers lose their fractional part.
func (c Cell) String() string {
	switch v := c.raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
