package gateway

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"sbp-deeplinks/internal/domain"
)

var evidenceHeader = []string{"uri", "source", "point", "frame", "script", "seen_at"}

// CSVEvidenceRepository implements the EvidenceStore interface for CSV files.
type CSVEvidenceRepository struct{}

// NewCSVEvidenceRepository creates a new repository instance.
func NewCSVEvidenceRepository() *CSVEvidenceRepository {
	return &CSVEvidenceRepository{}
}

// WriteEvidence stores one harvest's evidence, one observation per row.
func (r *CSVEvidenceRepository) WriteEvidence(ctx context.Context, path string, evidence []domain.Evidence) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create evidence file %s: %w", path, err)
	}
	defer file.Close()

	if err := writeEvidence(ctx, file, evidence); err != nil {
		return fmt.Errorf("failed to write evidence to %s: %w", path, err)
	}
	return file.Close()
}

func writeEvidence(ctx context.Context, w io.Writer, evidence []domain.Evidence) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(evidenceHeader); err != nil {
		return err
	}
	for _, ev := range evidence {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := []string{
			ev.URI,
			string(ev.Source),
			string(ev.Point),
			ev.Frame,
			ev.Script,
			ev.SeenAt.UTC().Format(time.RFC3339Nano),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadEvidence loads evidence written by earlier sessions from several files.
func (r *CSVEvidenceRepository) ReadEvidence(ctx context.Context, paths []string) ([]domain.Evidence, error) {
	var all []domain.Evidence
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		evidence, err := readEvidenceFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, evidence...)
	}
	return all, nil
}

func readEvidenceFile(path string) ([]domain.Evidence, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open evidence file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(evidenceHeader)
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}

	var evidence []domain.Evidence
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", path, err)
		}

		seenAt, err := time.Parse(time.RFC3339Nano, record[5])
		if err != nil {
			return nil, fmt.Errorf("could not parse seen_at '%s': %w", record[5], err)
		}

		source := domain.EvidenceSource(record[1])
		if source != domain.SourceRuntime && source != domain.SourceStaticScan {
			return nil, fmt.Errorf("unknown evidence source '%s' in %s", record[1], path)
		}

		evidence = append(evidence, domain.Evidence{
			URI:    record[0],
			Source: source,
			Point:  domain.HookPoint(record[2]),
			Frame:  record[3],
			Script: record[4],
			SeenAt: seenAt,
		})
	}
	return evidence, nil
}
