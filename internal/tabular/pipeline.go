// Package tabular streams CSV files through the engine. Rows are read in
// chunks, anonymized by a bounded worker pool, and written back in input
// order; column types are detected once from a bounded sample before any row
// is processed.
package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/anonymizer/internal/engine"
	apperrors "github.com/allisson/anonymizer/internal/errors"
)

// Pipeline runs CSV anonymization with a fixed worker pool.
type Pipeline struct {
	engine     *engine.Engine
	workers    int
	chunkSize  int
	sampleSize int
	logger     *slog.Logger
}

// NewPipeline creates a pipeline. Worker, chunk, and sample counts below one
// are raised to one.
func NewPipeline(eng *engine.Engine, workers, chunkSize, sampleSize int, logger *slog.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	if chunkSize < 1 {
		chunkSize = 1
	}
	if sampleSize < 1 {
		sampleSize = 1
	}
	return &Pipeline{
		engine:     eng,
		workers:    workers,
		chunkSize:  chunkSize,
		sampleSize: sampleSize,
		logger:     logger,
	}
}

// Schema is the detection outcome for a file's columns.
type Schema struct {
	Columns []engine.ColumnParams `json:"columns"`
}

// Analyze reads the header and a bounded sample and returns the detected
// schema without writing any output. Detections are registered with the
// engine, so a following Run reuses them.
func (p *Pipeline) Analyze(ctx context.Context, input io.Reader) (*Schema, error) {
	reader := csv.NewReader(input)
	header, sample, _, err := p.readSample(reader)
	if err != nil {
		return nil, err
	}

	schema := &Schema{Columns: make([]engine.ColumnParams, 0, len(header))}
	for i, name := range header {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		detection := p.engine.RegisterColumn(name, sample[i])
		schema.Columns = append(schema.Columns, engine.ColumnParams{
			Name:       name,
			Type:       detection.Type,
			Confidence: detection.Confidence,
			Params:     detection.Params,
		})
	}
	return schema, nil
}

// Run streams input to output, anonymizing every cell. The returned report is
// valid even when an error cut the run short.
func (p *Pipeline) Run(ctx context.Context, input io.Reader, output io.Writer) (*Report, error) {
	report := NewReport()
	report.Files = 1

	reader := csv.NewReader(input)
	header, sample, buffered, err := p.readSample(reader)
	if err != nil {
		report.AddError(err)
		return report, err
	}

	for i, name := range header {
		detection := p.engine.RegisterColumn(name, sample[i])
		report.SetColumnType(name, string(detection.Type), detection.Confidence)
	}

	writer := csv.NewWriter(output)
	if err := writer.Write(header); err != nil {
		report.AddError(err)
		return report, apperrors.Wrap(err, "failed to write csv header")
	}

	chunk := buffered
	for len(chunk) > 0 {
		if err := p.processChunk(ctx, header, chunk, report); err != nil {
			report.AddError(err)
			return report, err
		}
		for _, row := range chunk {
			if err := writer.Write(row); err != nil {
				report.AddError(err)
				return report, apperrors.Wrap(err, "failed to write csv record")
			}
		}
		report.Rows += int64(len(chunk))

		chunk, err = readChunk(reader, p.chunkSize)
		if err != nil {
			report.AddError(err)
			return report, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		report.AddError(err)
		return report, apperrors.Wrap(err, "failed to flush csv output")
	}

	p.logger.Info("csv run finished", slog.Int64("rows", report.Rows))
	return report, nil
}

// readSample reads the header and up to sampleSize rows. The sampled rows are
// returned so Run can process them; they are not consumed twice.
func (p *Pipeline) readSample(reader *csv.Reader) ([]string, [][]string, [][]string, error) {
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, "csv input is empty")
	}
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(err, "failed to read csv header")
	}

	sample := make([][]string, len(header))
	buffered := make([][]string, 0, p.sampleSize)
	for len(buffered) < p.sampleSize {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, apperrors.Wrap(err, "failed to read csv record")
		}
		buffered = append(buffered, record)
		for i := range header {
			if i < len(record) {
				sample[i] = append(sample[i], record[i])
			}
		}
	}
	return header, sample, buffered, nil
}

func readChunk(reader *csv.Reader, size int) ([][]string, error) {
	rows := make([][]string, 0, size)
	for len(rows) < size {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to read csv record")
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// processChunk anonymizes a chunk in place. Workers stripe over the rows;
// each worker handles one row's cells sequentially and checks cancellation
// between rows.
func (p *Pipeline) processChunk(ctx context.Context, header []string, rows [][]string, report *Report) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < p.workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(rows); i += p.workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if err := p.processRow(ctx, header, rows[i], report); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) processRow(ctx context.Context, header []string, row []string, report *Report) error {
	for i, cell := range row {
		if i >= len(header) {
			break
		}
		anonymized, err := p.engine.Anonymize(ctx, header[i], cell)
		if err != nil {
			return apperrors.Wrap(err, "failed to anonymize column "+header[i])
		}
		row[i] = anonymized
		report.CountCell(header[i])
	}
	return nil
}
