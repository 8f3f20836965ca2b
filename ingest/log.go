package ingest

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// LogProcessor handles plain-text relationship lists, one per line, such as
// "A -> B" or "X connected to Y". Lines that match no pattern are skipped.
type LogProcessor struct {
	opts Options
}

// NewLogProcessor creates a new log processor
func NewLogProcessor(opts Options) *LogProcessor {
	return &LogProcessor{opts: opts}
}

// GetName returns the name of the processor
func (p *LogProcessor) GetName() string {
	return "Log Processor"
}

var logSeparators = []string{
	" -> ",
	" => ",
	" connected to ",
	" connects to ",
	" links to ",
	" linked to ",
	" - ",
}

// ProcessData processes log data
func (p *LogProcessor) ProcessData(data []byte) (*models.Graph, error) {
	b := newBuilder("Log Import", p.opts)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, sep := range logSeparators {
			src, dst, ok := strings.Cut(line, sep)
			if !ok || strings.Contains(dst, sep) {
				continue
			}
			src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)
			if src == "" || dst == "" {
				continue
			}
			b.edge(b.node(src, ""), b.node(dst, ""), 1)
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read log input")
	}

	return b.finish(), nil
}
