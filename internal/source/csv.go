package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// CSVProvider reads the battle table from a local file or an http(s) URL,
// such as a spreadsheet's "publish to web" CSV export.
type CSVProvider struct {
	Location string
	Client   *http.Client
}

func NewCSVProvider(location string) *CSVProvider {
	return &CSVProvider{
		Location: location,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *CSVProvider) Name() string {
	return "csv"
}

func (p *CSVProvider) Fetch(ctx context.Context) ([]Row, error) {
	if strings.HasPrefix(p.Location, "http://") || strings.HasPrefix(p.Location, "https://") {
		return p.fetchURL(ctx)
	}

	f, err := os.Open(p.Location)
	if err != nil {
		return nil, fmt.Errorf("error opening csv: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

func (p *CSVProvider) fetchURL(ctx context.Context) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	return ReadCSV(resp.Body)
}

// ReadCSV parses a CSV table whose first line is the header.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	table, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading csv: %w", err)
	}
	return RowsFromTable(table), nil
}
