package enrich

import (
	"context"
	"errors"
	"log/slog"

	"enrich/internal/annotate"
	"enrich/internal/config"
	"enrich/internal/logging"
	"enrich/internal/records"
	"enrich/internal/services"
)

// Stats summarizes one file's enrichment.
type Stats struct {
	Records int
	Chunks  int
	Skipped int
}

// Pipeline enriches one JSON-lines file at a time: read, chunk, split,
// annotate, extract, append. Pipelines for different files are fully
// independent; a single Pipeline value is safe to share across workers
// because per-file state lives on the stack of EnrichFile.
type Pipeline struct {
	cfg           *config.Config
	logger        *slog.Logger
	annotator     annotate.Annotator
	contentFields []string
}

// NewPipeline wires a pipeline from configuration. The content-field list is
// resolved once, consulting the preset table when configured.
func NewPipeline(cfg *config.Config, logger *slog.Logger, annotator annotate.Annotator) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires configuration")
	}
	if annotator == nil {
		return nil, errors.New("pipeline requires an annotator")
	}
	fields, err := cfg.ResolveContentFields()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "content fields", err.Error(), nil)
	}
	return &Pipeline{
		cfg:           cfg,
		logger:        logging.NewComponentLogger(logger, "pipeline"),
		annotator:     annotator,
		contentFields: fields,
	}, nil
}

// ContentFields exposes the resolved field list for logging and status output.
func (p *Pipeline) ContentFields() []string {
	return append([]string(nil), p.contentFields...)
}

// EnrichFile runs the whole per-file pipeline and appends output records to
// <output_dir>/<basename(input)>.enrich.
func (p *Pipeline) EnrichFile(ctx context.Context, inputPath string) (Stats, error) {
	ctx = services.WithInputPath(ctx, inputPath)
	logger := logging.WithContext(ctx, p.logger)

	var stats Stats

	scanner, err := records.Open(inputPath)
	if err != nil {
		return stats, services.Wrap(services.ErrNotFound, "read", "open", inputPath, err)
	}
	defer scanner.Close()

	chunker, err := records.NewChunker(scanner, p.cfg.Pipeline.ChunkSize)
	if err != nil {
		return stats, services.Wrap(services.ErrConfiguration, "read", "chunk", err.Error(), nil)
	}

	outputPath := OutputPath(p.cfg.Paths.OutputDir, inputPath)
	writer, err := NewWriter(outputPath)
	if err != nil {
		return stats, services.Wrap(services.ErrValidation, "write", "open", outputPath, err)
	}
	defer writer.Close()

	for chunker.Next() {
		chunk := chunker.Chunk()
		if err := p.enrichChunk(ctx, chunk, writer); err != nil {
			return stats, err
		}
		stats.Records += len(chunk)
		stats.Chunks++
		logger.Debug("chunk enriched",
			logging.Int(logging.FieldChunkIndex, stats.Chunks-1),
			logging.Int(logging.FieldRecordCount, len(chunk)),
		)
	}
	if err := chunker.Err(); err != nil {
		return stats, services.Wrap(services.ErrTransient, "read", "scan", inputPath, err)
	}
	stats.Skipped = scanner.Skipped()

	if err := writer.Close(); err != nil {
		return stats, services.Wrap(services.ErrTransient, "write", "close", outputPath, err)
	}

	logger.Info("file enriched",
		logging.String(logging.FieldEventType, "file_enriched"),
		logging.Int(logging.FieldRecordCount, stats.Records),
		logging.Int("chunk_count", stats.Chunks),
		logging.Int("skipped_lines", stats.Skipped),
		logging.String("output_file", outputPath),
	)
	return stats, nil
}

func (p *Pipeline) enrichChunk(ctx context.Context, chunk records.Chunk, writer *Writer) error {
	texts, metadata, err := records.Split(chunk, p.contentFields)
	if err != nil {
		return err
	}

	docs, err := p.annotator.Annotate(ctx, texts, metadata, p.cfg.Engine.Concurrency)
	if err != nil {
		return err
	}

	flags := p.cfg.Pipeline
	for _, doc := range docs {
		out := doc.Meta.Clone()
		out["spacy_enrichment"] = map[string]any{"token": Tokens(doc)}
		if flags.NounChunks {
			out["noun_chunks"] = NounChunks(doc)
		}
		if flags.SVOs {
			out["svos"] = SVOTriples(doc)
		}
		if flags.Entities {
			out["named_entities"] = NamedEntities(doc)
		}
		if flags.Sents {
			out["sents"] = Sentences(doc)
		}
		if err := writer.Write(out); err != nil {
			return services.Wrap(services.ErrTransient, "write", "append", "", err)
		}
	}
	return nil
}
