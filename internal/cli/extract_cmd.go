package cli

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"kitmerge/internal/charset"
	"kitmerge/internal/extract"
	"kitmerge/internal/filter/formats"
	"kitmerge/internal/kit"
)

type extractFlags struct {
	sourceLocale   string
	targetLocale   string
	extractionType string
	encoding       string
	targetEncoding string
	params         []string
	seedTargets    bool
	approvedOnly   bool
	updateApproved bool
	workers        int
}

func (a *app) extractCmd() *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "extract <input-dir> <kit-dir>",
		Short: "Create a translation kit from a directory of documents",
		Long: `Walks <input-dir>, and for every supported document (.ini, .cfg, .txt, .tsv,
.tab, .xlf) copies the original into the kit, records its skeleton and writes
the XLIFF file to translate under work/.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				f.workers = a.cfg.WorkerCount
			}
			return a.runExtract(args[0], args[1], f)
		},
	}

	cmd.Flags().StringVarP(&f.sourceLocale, "source-locale", "s", "", "Source locale (required)")
	cmd.Flags().StringVarP(&f.targetLocale, "target-locale", "t", "", "Target locale (required)")
	cmd.Flags().StringVar(&f.extractionType, "type", string(kit.ExtractionXLIFF), "Extraction type recorded in the manifest (xliff, table, po, ...)")
	cmd.Flags().StringVar(&f.encoding, "encoding", charset.UTF8, "Encoding of the input documents")
	cmd.Flags().StringVar(&f.targetEncoding, "target-encoding", "", "Encoding of the merged documents (default: input encoding)")
	cmd.Flags().StringArrayVar(&f.params, "params", nil, "Filter parameters as <filter-id>:<key=value;...>, repeatable")
	cmd.Flags().BoolVar(&f.seedTargets, "seed-targets", false, "Copy the source text into each target")
	cmd.Flags().BoolVar(&f.approvedOnly, "approved-only", false, "Only merge approved translations")
	cmd.Flags().BoolVar(&f.updateApproved, "update-approved", false, "Mark merged targets as approved")
	cmd.Flags().IntVar(&f.workers, "workers", 4, "Documents extracted in parallel")
	cmd.MarkFlagRequired("source-locale")
	cmd.MarkFlagRequired("target-locale")

	return cmd
}

// runExtract handles the `extract` command.
func (a *app) runExtract(inputDir, kitDir string, f extractFlags) error {
	ctx, cancel := setupContext()
	defer cancel()

	src, err := kit.NormalizeLocale(f.sourceLocale)
	if err != nil {
		return err
	}
	trg, err := kit.NormalizeLocale(f.targetLocale)
	if err != nil {
		return err
	}
	if _, err := charset.Lookup(f.encoding); err != nil {
		return err
	}
	params, err := parseFilterParams(f.params)
	if err != nil {
		return err
	}

	manifest := kit.New(kitDir, src, trg)
	manifest.UseApprovedOnly = f.approvedOnly
	manifest.UpdateApprovedFlag = f.updateApproved

	var (
		mu  sync.Mutex
		bar = newProgress(a.progress, -1, "extracting")
	)
	x := extract.New(formats.Registry(), manifest, extract.Options{
		Workers:        f.workers,
		ExtractionType: kit.ExtractionType(f.extractionType),
		InputEncoding:  f.encoding,
		TargetEncoding: f.targetEncoding,
		FilterParams:   params,
		SeedTargets:    f.seedTargets,
		OnDocument: func(info kit.MergingInfo, err error) {
			mu.Lock()
			defer mu.Unlock()
			bar.Add(1)
			if err != nil {
				log.Error().Err(err).Str("doc", info.RelativeInputPath).Msg("Extraction failed")
			}
		},
	})

	infos, err := x.Extract(ctx, inputDir)
	bar.Finish()
	if err != nil {
		return err
	}

	log.Info().
		Int("documents", len(infos)).
		Str("kit", manifest.Root()).
		Str("source", src.String()).
		Str("target", trg.String()).
		Msg("Kit created")
	return nil
}

// parseFilterParams turns "okf_table:header=true;sep=," flags into a map
// keyed by filter id.
func parseFilterParams(values []string) (map[string]string, error) {
	params := make(map[string]string, len(values))
	for _, v := range values {
		id, p, ok := strings.Cut(v, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --params %q: want <filter-id>:<parameters>", v)
		}
		if prev := params[id]; prev != "" {
			p = prev + ";" + p
		}
		params[id] = p
	}
	return params, nil
}
