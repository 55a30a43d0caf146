// Package merge re-injects translated kit content into the original
// documents. One Merger handles one document at a time: it pulls the
// original events from a Provider in step with the translated stream,
// transfers the translations and writes the result with the original
// format's writer.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kitmerge/internal/filter"
	"kitmerge/internal/kit"
	"kitmerge/internal/resource"
	"kitmerge/internal/xliff"
)

// HandoffTiming tells when the handoff event is produced.
type HandoffTiming int

const (
	// HandoffAtDocumentEnd produces the handoff event at EndDocument.
	HandoffAtDocumentEnd HandoffTiming = iota
	// HandoffAtSubDocumentEnd also produces it at each EndSubDocument; the
	// one at EndDocument is then suppressed.
	HandoffAtSubDocumentEnd
)

func (t HandoffTiming) String() string {
	if t == HandoffAtSubDocumentEnd {
		return "subdocument"
	}
	return "document"
}

// Options configures a Merger.
type Options struct {
	// TargetLocale overrides the target locale of the manifest.
	TargetLocale resource.LocaleID
	// OutputDir overrides the merge directory of the manifest.
	OutputDir string
	// Handoff replaces the returned events with a single handoff event once
	// the output file is complete.
	Handoff bool
	Timing  HandoffTiming
	// Logger defaults to the global logger.
	Logger *zerolog.Logger
}

// Result summarizes the merge of one document.
type Result struct {
	DocID    int
	Document string
	Output   string
	Errors   int
	Warnings int
	Handoffs []*resource.Handoff
	Duration time.Duration
}

type alignState int

const (
	stateAwaitUnit alignState = iota
	stateMatched
	stateMismatch
	stateExhausted
)

// Merger merges kit documents back into their originals. It is not safe
// for concurrent use; use one Merger per document in flight.
type Merger struct {
	manifest *kit.Manifest
	provider Provider
	opts     Options
	trgLoc   resource.LocaleID
	base     zerolog.Logger
	log      zerolog.Logger

	info              kit.MergingInfo
	stream            Stream
	writer            filter.Writer
	outPath           string
	skipEmptySource   bool
	useSource         bool
	forceSegmentation bool
	useSubDoc         bool
	flushed           bool
	ended             bool
	handoff           *resource.Handoff
	state             alignState
	errorCount        int
	warningCount      int
}

// New creates a Merger for the documents of manifest.
func New(manifest *kit.Manifest, provider Provider, opts Options) *Merger {
	base := log.Logger
	if opts.Logger != nil {
		base = *opts.Logger
	}
	trgLoc := opts.TargetLocale
	if trgLoc == "" {
		trgLoc = manifest.TargetLocale
	}
	return &Merger{
		manifest: manifest,
		provider: provider,
		opts:     opts,
		trgLoc:   trgLoc,
		base:     base,
		log:      base,
	}
}

// TargetLocale returns the locale being merged.
func (mg *Merger) TargetLocale() resource.LocaleID { return mg.trgLoc }

// ErrorCount returns the number of errors since the last StartMerging.
func (mg *Merger) ErrorCount() int { return mg.errorCount }

// WarningCount returns the number of warnings since the last StartMerging.
func (mg *Merger) WarningCount() int { return mg.warningCount }

// OutputPath returns where the current document is written.
func (mg *Merger) OutputPath() string { return mg.outPath }

// StartMerging opens the original of info and writes its StartDocument.
// ev is the StartDocument event of the translated stream. The returned
// event is the original's StartDocument, or a no-op in handoff mode.
// Any error here is fatal for the document and leaves no output behind.
func (mg *Merger) StartMerging(ctx context.Context, info kit.MergingInfo, ev *resource.Event) (*resource.Event, error) {
	mg.Close()
	mg.reset(info)
	mg.log.Info().Str("filter", info.FilterID).Msg("Merging")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stream, err := mg.provider.Open(ctx, info, mg.trgLoc)
	if err != nil {
		return nil, fmt.Errorf("open original of %s: %w", info.RelativeInputPath, err)
	}
	mg.stream = stream

	first, err := stream.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		mg.Close()
		return nil, fmt.Errorf("read original of %s: %w", info.RelativeInputPath, err)
	}
	var sd *resource.StartDocument
	if first != nil && first.Type == resource.EventStartDocument {
		sd = first.StartDocument()
	}
	if sd == nil {
		mg.Close()
		return nil, fmt.Errorf("original of %s: %w", info.RelativeInputPath, ErrNoStartDocument)
	}
	mg.forceSegmentation = sd.SegmentedOutput

	w, err := stream.Writer(sd)
	if err != nil {
		mg.Close()
		return nil, fmt.Errorf("create writer for %s: %w", info.RelativeInputPath, err)
	}
	w.SetOptions(mg.trgLoc, info.TargetEncoding)
	w.SetOutput(mg.outPath)
	mg.writer = w
	if err := mg.write(first); err != nil {
		mg.Close()
		return nil, err
	}

	if !mg.opts.Handoff {
		return first, nil
	}
	src := mg.trgLoc
	if sd.Multilingual {
		src = mg.manifest.SourceLocale
	}
	mg.handoff = &resource.Handoff{
		Path:         mg.outPath,
		Encoding:     info.TargetEncoding,
		SourceLocale: src,
		TargetLocale: mg.trgLoc,
	}
	return resource.NoOp(), nil
}

// HandleEvent processes one event of the translated stream and returns the
// event to pass downstream: the event itself, a no-op or a handoff event.
func (mg *Merger) HandleEvent(ev *resource.Event) (*resource.Event, error) {
	if mg.writer == nil {
		return nil, errors.New("merge: HandleEvent called before StartMerging")
	}
	switch ev.Type {
	case resource.EventTextUnit:
		if err := mg.processUnit(ev.Unit()); err != nil {
			return nil, err
		}
	case resource.EventStartSubDocument:
		mg.useSubDoc = true
	case resource.EventEndSubDocument:
		if mg.opts.Handoff && mg.opts.Timing == HandoffAtSubDocumentEnd {
			if mg.flushed {
				// The output was completed at the first sub-document.
				return resource.NoOp(), nil
			}
			if err := mg.finish(); err != nil {
				return nil, err
			}
			return mg.handoffEvent(), nil
		}
	case resource.EventEndDocument:
		if err := mg.finish(); err != nil {
			return nil, err
		}
		mg.log.Info().Int("errors", mg.errorCount).Int("warnings", mg.warningCount).
			Str("output", mg.outPath).Msg("Merged")
		if mg.opts.Handoff {
			if mg.opts.Timing == HandoffAtSubDocumentEnd && mg.useSubDoc {
				return resource.NoOp(), nil
			}
			return mg.handoffEvent(), nil
		}
	}
	if mg.opts.Handoff {
		return resource.NoOp(), nil
	}
	return ev, nil
}

// Close releases the original stream and the writer. Output that was not
// completed is discarded. It is safe to call more than once.
func (mg *Merger) Close() error {
	var errs []error
	if mg.writer != nil {
		errs = append(errs, mg.writer.Close())
		mg.writer = nil
	}
	if mg.stream != nil {
		errs = append(errs, mg.stream.Close())
		mg.stream = nil
	}
	return errors.Join(errs...)
}

// MergeDocument merges one document, reading the translated events from
// src. A src without EndDocument is ended as if it had one.
func (mg *Merger) MergeDocument(ctx context.Context, info kit.MergingInfo, src Source) (Result, error) {
	started := time.Now()
	res := Result{DocID: info.DocID, Document: info.RelativeInputPath}
	defer mg.Close()

	first, err := src.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return res, fmt.Errorf("read translated %s: %w", info.RelativeInputPath, err)
	}
	if first == nil || first.Type != resource.EventStartDocument {
		return res, fmt.Errorf("translated %s: %w", info.RelativeInputPath, ErrNoStartDocument)
	}
	if _, err := mg.StartMerging(ctx, info, first); err != nil {
		return res, err
	}
	res.Output = mg.outPath

	ended := false
	for !ended {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			ev = resource.NewEndingEvent(resource.EventEndDocument, &resource.Ending{ID: "end"})
		} else if err != nil {
			return res, fmt.Errorf("read translated %s: %w", info.RelativeInputPath, err)
		}
		ended = ev.Type == resource.EventEndDocument
		out, err := mg.HandleEvent(ev)
		if err != nil {
			return res, err
		}
		if h := out.Handoff(); h != nil {
			res.Handoffs = append(res.Handoffs, h)
		}
	}

	res.Errors = mg.errorCount
	res.Warnings = mg.warningCount
	res.Duration = time.Since(started)
	return res, nil
}

// MergeWorkFile merges a document from its XLIFF file in the kit.
func (mg *Merger) MergeWorkFile(ctx context.Context, info kit.MergingInfo) (Result, error) {
	f := xliff.NewFilter()
	in := filter.Input{
		Path:         mg.manifest.WorkPath(info),
		SourceLocale: mg.manifest.SourceLocale,
		TargetLocale: mg.trgLoc,
	}
	if err := f.Open(ctx, in); err != nil {
		return Result{DocID: info.DocID, Document: info.RelativeInputPath},
			fmt.Errorf("open translated %s: %w", info.RelativeInputPath, err)
	}
	defer f.Close()
	return mg.MergeDocument(ctx, info, f)
}

func (mg *Merger) reset(info kit.MergingInfo) {
	mg.info = info
	mg.log = mg.base.With().Str("doc", info.RelativeInputPath).Logger()
	mg.outPath = mg.outputPath(info)
	mg.skipEmptySource = info.ExtractionType.SkipEmptySource()
	mg.useSource = info.ExtractionType.UseSource()
	mg.forceSegmentation = false
	mg.useSubDoc = false
	mg.flushed = false
	mg.ended = false
	mg.handoff = nil
	mg.state = stateAwaitUnit
	mg.errorCount = 0
	mg.warningCount = 0
}

func (mg *Merger) outputPath(info kit.MergingInfo) string {
	dir := mg.opts.OutputDir
	if dir == "" {
		dir = mg.manifest.MergeDirectory()
	}
	return filepath.Join(dir, filepath.FromSlash(info.RelativeTargetPath))
}
