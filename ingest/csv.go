package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// CSVProcessor handles edge lists with a header row. Source and target
// columns are required; weight and label columns are optional.
type CSVProcessor struct {
	opts Options
}

// NewCSVProcessor creates a new CSV processor
func NewCSVProcessor(opts Options) *CSVProcessor {
	return &CSVProcessor{opts: opts}
}

// GetName returns the name of the processor
func (p *CSVProcessor) GetName() string {
	return "CSV Processor"
}

// ProcessData processes CSV data
func (p *CSVProcessor) ProcessData(data []byte) (*models.Graph, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read CSV header")
	}

	sourceIdx, targetIdx, weightIdx, labelIdx := -1, -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "source", "from", "src":
			sourceIdx = i
		case "target", "to", "dst":
			targetIdx = i
		case "weight", "value", "strength":
			weightIdx = i
		case "label", "name", "title":
			labelIdx = i
		}
	}
	if sourceIdx == -1 || targetIdx == -1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "CSV must contain source and target columns")
	}

	b := newBuilder("CSV Import", p.opts)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read CSV row %d", line)
		}

		sourceID, targetID := row[sourceIdx], row[targetIdx]
		if sourceID == "" || targetID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "CSV row %d: empty source or target", line)
		}

		label := ""
		if labelIdx >= 0 {
			label = row[labelIdx]
		}
		source := b.node(sourceID, label)
		target := b.node(targetID, "")

		weight := 1.0
		if weightIdx >= 0 && row[weightIdx] != "" {
			w, err := strconv.ParseFloat(row[weightIdx], 64)
			if err != nil || w < 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "CSV row %d: invalid weight %q", line, row[weightIdx])
			}
			weight = w
		}
		b.edge(source, target, weight)
	}

	return b.finish(), nil
}
