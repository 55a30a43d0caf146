package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"kitmerge/internal/config"
	"kitmerge/internal/filter/formats"
	"kitmerge/internal/kit"
	"kitmerge/internal/merge"
	"kitmerge/internal/report"
	"kitmerge/internal/worker"
)

type mergeFlags struct {
	targetLocale string
	outputDir    string
	workers      int
	handoff      bool
	timing       string
	skeletonMode string
	docs         []int
	failOnErrors bool
}

func (a *app) mergeCmd() *cobra.Command {
	var f mergeFlags
	cmd := &cobra.Command{
		Use:   "merge <kit-dir>",
		Short: "Merge the translated XLIFF files of a kit into the original formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				f.workers = a.cfg.WorkerCount
			}
			if !cmd.Flags().Changed("handoff") {
				f.handoff = a.cfg.Handoff
			}
			if !cmd.Flags().Changed("skeleton-mode") {
				f.skeletonMode = a.cfg.SkeletonMode
			}
			return a.runMerge(args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.targetLocale, "target-locale", "", "Merge this locale instead of the manifest's target locale")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Output directory (default: the kit's done directory)")
	cmd.Flags().IntVar(&f.workers, "workers", 4, "Documents merged in parallel")
	cmd.Flags().BoolVar(&f.handoff, "handoff", false, "Report one handoff per completed output file")
	cmd.Flags().StringVar(&f.timing, "handoff-at", "document", "When handoffs are produced: document or subdocument")
	cmd.Flags().StringVar(&f.skeletonMode, "skeleton-mode", config.SkeletonModeFilter, "Original stream source: filter (re-parse the original) or replay (skeleton recording)")
	cmd.Flags().IntSliceVar(&f.docs, "doc", nil, "Merge only these document ids")
	cmd.Flags().BoolVar(&f.failOnErrors, "fail-on-errors", false, "Exit with an error when any document has merge errors")

	return cmd
}

// runMerge handles the `merge` command.
func (a *app) runMerge(kitDir string, f mergeFlags) error {
	ctx, cancel := setupContext()
	defer cancel()

	manifest, err := kit.Load(kitDir)
	if err != nil {
		return err
	}

	opts, err := mergeOptions(f)
	if err != nil {
		return err
	}

	registry := formats.Registry()
	var provider merge.Provider
	switch f.skeletonMode {
	case config.SkeletonModeReplay:
		provider = merge.NewSkeletonProvider(registry, manifest)
	case config.SkeletonModeFilter:
		provider = merge.NewFilterProvider(registry, manifest)
	default:
		return fmt.Errorf("unknown skeleton mode %q", f.skeletonMode)
	}

	docs, err := selectDocs(manifest, f.docs)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	runID := report.NewRunID()
	log.Info().
		Str("run", runID.String()).
		Str("kit", manifest.Root()).
		Int("documents", len(docs)).
		Int("workers", f.workers).
		Str("mode", f.skeletonMode).
		Msg("Starting merge")

	bar := newProgress(a.progress, len(docs), "merging")
	pool := worker.NewPool(f.workers, func(ctx context.Context, info kit.MergingInfo) (merge.Result, error) {
		mg := merge.New(manifest, provider, opts)
		return mg.MergeWorkFile(ctx, info)
	}).OnDone(func(worker.Task[kit.MergingInfo, merge.Result]) {
		bar.Add(1)
	})
	tasks := pool.Execute(ctx, docs)
	bar.Finish()

	entries := make([]report.Entry, 0, len(tasks))
	totalErrors, totalWarnings, failed := 0, 0, 0
	for _, task := range tasks {
		res := task.Result
		res.DocID = task.Input.DocID
		res.Document = task.Input.RelativeInputPath
		entries = append(entries, report.FromResult(runID, manifest.Root(), res, task.Err))

		if task.Err != nil {
			failed++
			continue
		}
		totalErrors += res.Errors
		totalWarnings += res.Warnings
		for _, h := range res.Handoffs {
			log.Info().Str("path", h.Path).Str("encoding", h.Encoding).
				Str("source", h.SourceLocale.String()).Str("target", h.TargetLocale.String()).
				Msg("Handoff")
		}
	}

	if err := store.Save(ctx, entries); err != nil {
		log.Warn().Err(err).Msg("Failed to store merge results")
	}

	log.Info().
		Int("documents", len(docs)).
		Int("failed", failed).
		Int("errors", totalErrors).
		Int("warnings", totalWarnings).
		Msg("Merge complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d documents could not be merged", failed, len(docs))
	}
	if f.failOnErrors && totalErrors > 0 {
		return fmt.Errorf("merge finished with %d errors", totalErrors)
	}
	return nil
}

func mergeOptions(f mergeFlags) (merge.Options, error) {
	opts := merge.Options{OutputDir: f.outputDir, Handoff: f.handoff}
	if f.targetLocale != "" {
		loc, err := kit.NormalizeLocale(f.targetLocale)
		if err != nil {
			return opts, err
		}
		opts.TargetLocale = loc
	}
	switch f.timing {
	case "", "document":
		opts.Timing = merge.HandoffAtDocumentEnd
	case "subdocument":
		opts.Timing = merge.HandoffAtSubDocumentEnd
	default:
		return opts, fmt.Errorf("unknown handoff timing %q", f.timing)
	}
	return opts, nil
}

func selectDocs(m *kit.Manifest, ids []int) ([]kit.MergingInfo, error) {
	if len(ids) == 0 {
		return m.Docs, nil
	}
	docs := make([]kit.MergingInfo, 0, len(ids))
	for _, id := range ids {
		info, ok := m.Item(id)
		if !ok {
			return nil, fmt.Errorf("no document with id %d in the manifest", id)
		}
		docs = append(docs, info)
	}
	return docs, nil
}
