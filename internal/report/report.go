// Package report keeps the history of merge runs and exports it.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"kitmerge/internal/merge"
)

// Entry is the outcome of merging one document during a run.
type Entry struct {
	RunID      uuid.UUID     `json:"run_id"`
	Kit        string        `json:"kit"`
	DocID      int           `json:"doc_id"`
	Document   string        `json:"document"`
	Output     string        `json:"output"`
	Errors     int           `json:"errors"`
	Warnings   int           `json:"warnings"`
	Failed     string        `json:"failed,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Store persists run entries.
type Store interface {
	Save(ctx context.Context, entries []Entry) error
	All(ctx context.Context) ([]Entry, error)
}

// NewRunID returns a fresh run identifier.
func NewRunID() uuid.UUID {
	return uuid.New()
}

// FromResult builds the entry for one merged document. A non-nil err marks
// a document whose merge could not start or complete.
func FromResult(runID uuid.UUID, kitRoot string, res merge.Result, err error) Entry {
	e := Entry{
		RunID:      runID,
		Kit:        kitRoot,
		DocID:      res.DocID,
		Document:   res.Document,
		Output:     res.Output,
		Errors:     res.Errors,
		Warnings:   res.Warnings,
		Duration:   res.Duration,
		FinishedAt: time.Now().UTC(),
	}
	if err != nil {
		e.Failed = err.Error()
	}
	return e
}

// ExportTSV writes all stored entries to a TSV file.
func ExportTSV(ctx context.Context, store Store, outputPath string) error {
	entries, err := store.All(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create TSV file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "run_id\tkit\tdoc_id\tdocument\toutput\terrors\twarnings\tfailed\tduration_ms\tfinished_at")

	for _, e := range entries {
		fmt.Fprintf(f, "%s\t%s\t%d\t%s\t%s\t%d\t%d\t%s\t%d\t%s\n",
			e.RunID,
			escapeTSV(e.Kit),
			e.DocID,
			escapeTSV(e.Document),
			escapeTSV(e.Output),
			e.Errors,
			e.Warnings,
			escapeTSV(e.Failed),
			e.Duration.Milliseconds(),
			e.FinishedAt.Format(time.RFC3339),
		)
	}

	log.Info().Str("path", outputPath).Int("entries", len(entries)).Msg("Exported merge history to TSV")
	return nil
}

// ExportJSON writes all stored entries to a JSON file.
func ExportJSON(ctx context.Context, store Store, outputPath string) error {
	entries, err := store.All(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	log.Info().Str("path", outputPath).Int("entries", len(entries)).Msg("Exported merge history to JSON")
	return nil
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
