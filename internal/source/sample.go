package source

import (
	"bytes"
	"context"
	_ "embed"
)

//go:embed data/battles.csv
var sampleCSV []byte

// SampleProvider serves the dataset bundled with the binary.
type SampleProvider struct{}

func (SampleProvider) Name() string {
	return "sample"
}

func (SampleProvider) Fetch(ctx context.Context) ([]Row, error) {
	return ReadCSV(bytes.NewReader(sampleCSV))
}
