package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"enrich/internal/annotate"
	"enrich/internal/annotate/spacy"
	"enrich/internal/config"
	"enrich/internal/dispatch"
	"enrich/internal/enrich"
	"enrich/internal/logging"
	"enrich/internal/runstore"
	"enrich/internal/services"
)

type runFlags struct {
	fields     []string
	preset     string
	chunkSize  int
	workers    int
	outputDir  string
	nounChunks bool
	svos       bool
	entities   bool
	sents      bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <input-file>...",
		Short: "Enrich one or more JSON-lines files",
		Long: `Enrich reads each input file line by line, sends the configured content
fields to the annotation engine, and appends one enriched JSON object per
record to <output_dir>/<input basename>.enrich.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runEnrichment(cmd, cfg, flags, args)
		},
	}

	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "Record keys joined into the enriched text (overrides config)")
	cmd.Flags().StringVar(&flags.preset, "preset", "", "Predefined content-field list (gnip, patent, publication)")
	cmd.Flags().IntVar(&flags.chunkSize, "chunk-size", 0, "Records held in memory per batch (overrides config)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Input files enriched concurrently (overrides config)")
	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().BoolVar(&flags.nounChunks, "noun-chunks", false, "Emit deduplicated noun chunk lemmas")
	cmd.Flags().BoolVar(&flags.svos, "svos", false, "Emit subject-verb-object triples")
	cmd.Flags().BoolVar(&flags.entities, "entities", false, "Emit named entities grouped by lemma")
	cmd.Flags().BoolVar(&flags.sents, "sents", false, "Emit lemmatized sentences")

	return cmd
}

// applyRunFlags overlays command-line overrides on a copy of the loaded
// configuration and re-validates the result.
func applyRunFlags(cfg *config.Config, flags runFlags) (*config.Config, error) {
	merged := *cfg
	if len(flags.fields) > 0 {
		merged.Pipeline.ContentFields = flags.fields
		merged.Pipeline.Preset = ""
	}
	if flags.preset != "" {
		merged.Pipeline.Preset = strings.ToLower(strings.TrimSpace(flags.preset))
		if len(flags.fields) > 0 {
			return nil, fmt.Errorf("--fields and --preset are mutually exclusive")
		}
		merged.Pipeline.ContentFields = nil
	}
	if flags.chunkSize != 0 {
		merged.Pipeline.ChunkSize = flags.chunkSize
	}
	if flags.workers != 0 {
		merged.Pipeline.Workers = flags.workers
	}
	if flags.outputDir != "" {
		expanded, err := config.ExpandPath(flags.outputDir)
		if err != nil {
			return nil, fmt.Errorf("resolve output directory: %w", err)
		}
		merged.Paths.OutputDir = expanded
	}
	if flags.nounChunks {
		merged.Pipeline.NounChunks = true
	}
	if flags.svos {
		merged.Pipeline.SVOs = true
	}
	if flags.entities {
		merged.Pipeline.Entities = true
	}
	if flags.sents {
		merged.Pipeline.Sents = true
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// resolveInputs expands and verifies every input path before any work starts.
func resolveInputs(args []string) ([]string, error) {
	inputs := make([]string, 0, len(args))
	seen := make(map[string]struct{}, len(args))
	for _, arg := range args {
		path, err := config.ExpandPath(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("resolve input path %q: %w", arg, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("input file %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("input path %s is a directory", path)
		}
		if _, dup := seen[path]; dup {
			return nil, fmt.Errorf("input file %s given twice", path)
		}
		seen[path] = struct{}{}
		inputs = append(inputs, path)
	}
	return inputs, nil
}

func runEnrichment(cmd *cobra.Command, baseCfg *config.Config, flags runFlags, args []string) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := applyRunFlags(baseCfg, flags)
	if err != nil {
		return err
	}
	fields, err := cfg.ResolveContentFields()
	if err != nil {
		return err
	}
	inputs, err := resolveInputs(args)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := cfg.ValidateOutputDir(); err != nil {
		return err
	}

	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("enrich-%s.log", time.Now().UTC().Format("20060102T150405.000Z")))
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lock, err := runstore.AcquireLock(cfg)
	if err != nil {
		return err
	}
	defer lock.Release()

	store, err := runstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	pipes := annotate.RequiredPipes(cfg.Pipeline.NounChunks, cfg.Pipeline.SVOs, cfg.Pipeline.Entities, cfg.Pipeline.Sents)
	client := spacy.NewClient(
		spacy.WithBaseURL(cfg.Engine.BaseURL),
		spacy.WithModel(cfg.Engine.Model),
		spacy.WithLanguage(cfg.Engine.Language),
		spacy.WithPipes(pipes),
		spacy.WithTimeout(time.Duration(cfg.Engine.TimeoutSeconds)*time.Second),
	)
	if err := client.Health(signalCtx); err != nil {
		return fmt.Errorf("annotation engine at %s is not ready: %w", cfg.Engine.BaseURL, err)
	}

	pipeline, err := enrich.NewPipeline(cfg, logger, client)
	if err != nil {
		return err
	}

	run, err := store.BeginRun(signalCtx, cfg, fields, inputs)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	runCtx := services.WithRunID(signalCtx, run.ID)

	logger.Info("run started",
		logging.String(logging.FieldRunID, run.ID),
		logging.Int("file_count", len(inputs)),
		logging.Int("workers", cfg.Pipeline.Workers),
		logging.String("content_fields", strings.Join(fields, ",")),
	)

	results := dispatch.Run(runCtx, inputs, cfg.Pipeline.Workers, func(jobCtx context.Context, input string) error {
		if err := store.ItemStarted(jobCtx, run.ID, input); err != nil {
			logger.Warn("ledger update failed", logging.String(logging.FieldInputFile, input), logging.Error(err))
		}
		stats, err := pipeline.EnrichFile(jobCtx, input)
		if err != nil {
			if ledgerErr := store.ItemFailed(context.WithoutCancel(jobCtx), run.ID, input, err); ledgerErr != nil {
				logger.Warn("ledger update failed", logging.String(logging.FieldInputFile, input), logging.Error(ledgerErr))
			}
			return err
		}
		if ledgerErr := store.ItemCompleted(jobCtx, run.ID, input, stats); ledgerErr != nil {
			logger.Warn("ledger update failed", logging.String(logging.FieldInputFile, input), logging.Error(ledgerErr))
		}
		return nil
	})

	failed := dispatch.Failed(results)
	finalStatus := runstore.StatusCompleted
	var runErr error
	if len(failed) > 0 {
		finalStatus = runstore.StatusFailed
		runErr = fmt.Errorf("%d of %d files failed", len(failed), len(inputs))
	}
	if err := store.FinishRun(context.WithoutCancel(signalCtx), run.ID, finalStatus, runErr); err != nil {
		logger.Warn("ledger update failed", logging.Error(err))
	}

	items, err := store.Items(signalCtx, run.ID)
	if err != nil {
		logger.Warn("load run items", logging.Error(err))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderRunSummary(items))
	for _, res := range failed {
		fmt.Fprintf(out, "failed: %s: %s\n", res.Input, services.Details(res.Err))
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("run completed", logging.String(logging.FieldRunID, run.ID))
	return nil
}
