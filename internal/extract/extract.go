// Package extract builds translation kits: it copies each original into the
// kit, records its event stream and writes the XLIFF file sent to
// translation.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"kitmerge/internal/charset"
	"kitmerge/internal/filewalker"
	"kitmerge/internal/filter"
	"kitmerge/internal/kit"
	"kitmerge/internal/skeleton"
	"kitmerge/internal/xliff"
)

// Options configures an Extractor.
type Options struct {
	Workers        int
	ExtractionType kit.ExtractionType
	InputEncoding  string
	// TargetEncoding defaults to the input encoding.
	TargetEncoding string
	// FilterParams holds filter parameters keyed by filter id.
	FilterParams map[string]string
	// SeedTargets copies the source of each translatable unit into its target.
	SeedTargets bool
	// OnDocument is called once per document, from the worker goroutines.
	OnDocument func(info kit.MergingInfo, err error)
	Logger     *zerolog.Logger
}

// Extractor adds documents to a kit.
type Extractor struct {
	registry *filter.Registry
	manifest *kit.Manifest
	opts     Options
	log      zerolog.Logger
}

// New creates an Extractor writing into manifest's kit.
func New(registry *filter.Registry, manifest *kit.Manifest, opts Options) *Extractor {
	l := log.Logger
	if opts.Logger != nil {
		l = *opts.Logger
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ExtractionType == "" {
		opts.ExtractionType = kit.ExtractionXLIFF
	}
	return &Extractor{registry: registry, manifest: manifest, opts: opts, log: l}
}

// Extract extracts every supported document under inputDir and saves the
// manifest. The first failing document cancels the others.
func (x *Extractor) Extract(ctx context.Context, inputDir string) ([]kit.MergingInfo, error) {
	entries, err := filewalker.NewWalker(x.registry).Walk(inputDir)
	if err != nil {
		return nil, err
	}

	infos := make([]kit.MergingInfo, len(entries))
	for i, e := range entries {
		infos[i] = x.manifest.Add(x.mergingInfo(e))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.opts.Workers)
	for i, e := range entries {
		g.Go(func() error {
			err := x.ExtractDocument(gctx, e.Path, infos[i])
			if x.opts.OnDocument != nil {
				x.opts.OnDocument(infos[i], err)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := x.manifest.Save(); err != nil {
		return nil, err
	}
	x.log.Info().Int("documents", len(infos)).Str("kit", x.manifest.Root()).Msg("Extraction complete")
	return infos, nil
}

func (x *Extractor) mergingInfo(e filewalker.FileEntry) kit.MergingInfo {
	trgEnc := x.opts.TargetEncoding
	if trgEnc == "" {
		trgEnc = x.opts.InputEncoding
	}
	return kit.MergingInfo{
		ExtractionType:     x.opts.ExtractionType,
		RelativeInputPath:  e.Rel,
		FilterID:           e.FilterID,
		FilterParameters:   x.opts.FilterParams[e.FilterID],
		InputEncoding:      charset.Canonical(x.opts.InputEncoding),
		RelativeTargetPath: e.Rel,
		TargetEncoding:     charset.Canonical(trgEnc),
		UseSkeleton:        true,
	}
}

// ExtractDocument copies the document at path into the kit as info and
// writes its recording and XLIFF file.
func (x *Extractor) ExtractDocument(ctx context.Context, path string, info kit.MergingInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := x.log.With().Str("doc", info.RelativeInputPath).Logger()

	original := x.manifest.OriginalPath(info)
	if err := copyFile(path, original); err != nil {
		return fmt.Errorf("copy original %s: %w", info.RelativeInputPath, err)
	}

	f, err := x.registry.Create(info.FilterID)
	if err != nil {
		return err
	}
	in := filter.Input{
		Path:         original,
		Name:         info.RelativeInputPath,
		Encoding:     info.InputEncoding,
		SourceLocale: x.manifest.SourceLocale,
		TargetLocale: x.manifest.TargetLocale,
		Params:       info.FilterParameters,
	}
	if err := f.Open(ctx, in); err != nil {
		return fmt.Errorf("extract %s: %w", info.RelativeInputPath, err)
	}
	defer f.Close()

	rec, err := skeleton.NewRecorder(skeleton.PathFor(x.manifest.SkeletonDirectory(), info.RelativeInputPath))
	if err != nil {
		return err
	}
	defer rec.Close()

	w := xliff.NewWriter()
	w.Original = info.RelativeInputPath
	w.SetOptions(x.manifest.TargetLocale, charset.UTF8)
	w.SetOutput(x.manifest.WorkPath(info))
	defer w.Close()

	skipEmpty := info.ExtractionType.SkipEmptySource()
	units, skipped := 0, 0
	for {
		ev, err := f.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("extract %s: %w", info.RelativeInputPath, err)
		}
		if err := rec.Record(ev); err != nil {
			return err
		}

		if u := ev.Unit(); u != nil && u.Translatable {
			if skipEmpty && u.IsEmpty() {
				skipped++
				continue
			}
			if x.opts.SeedTargets && !u.HasTarget(x.manifest.TargetLocale) {
				u.SetTarget(x.manifest.TargetLocale, u.Source.Clone())
			}
			units++
		}
		if err := w.HandleEvent(ev); err != nil {
			return fmt.Errorf("write kit file for %s: %w", info.RelativeInputPath, err)
		}
	}

	if err := rec.Close(); err != nil {
		return err
	}
	l.Debug().Int("units", units).Int("skipped", skipped).Msg("Extracted")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
