package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/vocabtable/internal/anki"
	"codeberg.org/snonux/vocabtable/internal/archive"
	"codeberg.org/snonux/vocabtable/internal/audio"
	"codeberg.org/snonux/vocabtable/internal/cli"
	"codeberg.org/snonux/vocabtable/internal/flashcard"
	"codeberg.org/snonux/vocabtable/internal/markup"
	"codeberg.org/snonux/vocabtable/internal/phonetic"
	"codeberg.org/snonux/vocabtable/internal/table"
)

// MediaDirName is the media subdirectory of the output directory
const MediaDirName = "media"

// Processor converts every table in the input directory
type Processor struct {
	flags       *cli.Flags
	logger      *zap.Logger
	decoder     *table.Decoder
	projector   *flashcard.Projector
	fetcher     *audio.Fetcher
	transcriber *phonetic.Transcriber
}

// Summary counts the outcome of a run
type Summary struct {
	Files        int
	Succeeded    int
	Expressions  int
	AudioFetched int
	AudioSkipped int
	Failures     []*FileError
}

// fileResult counts the outcome of one file
type fileResult struct {
	expressions  int
	audioFetched int
	audioSkipped int
}

// NewProcessor creates a new processor from validated flags
func NewProcessor(flags *cli.Flags, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	schema, err := table.LookupSchema(flags.Schema)
	if err != nil {
		return nil, err
	}
	decoder, err := table.NewDecoder(schema)
	if err != nil {
		return nil, err
	}

	mode, err := flashcard.ParseMode(flags.Mode)
	if err != nil {
		return nil, err
	}

	audioConfig := audio.DefaultConfig()
	audioConfig.MediaDir = filepath.Join(flags.OutputDir, MediaDirName)
	audioConfig.BaseURL = flags.AudioBaseURL
	audioConfig.Timeout = flags.AudioTimeout
	audioConfig.MaxSizeBytes = flags.AudioMaxSize

	fetcher, err := audio.NewFetcher(audioConfig)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		flags:     flags,
		logger:    logger,
		decoder:   decoder,
		projector: flashcard.NewProjector(mode),
		fetcher:   fetcher,
	}

	if flags.FillTranscription {
		p.transcriber = phonetic.NewTranscriber(&phonetic.Config{
			APIKey:   cli.GetOpenAIKey(),
			Model:    flags.OpenAIModel,
			Language: flags.Language,
		})
	}

	return p, nil
}

// InputFiles lists the regular, non-hidden files of the input directory in
// lexicographic order
func (p *Processor) InputFiles() ([]string, error) {
	entries, err := os.ReadDir(p.flags.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(p.flags.InputDir, entry.Name())
		// Stat follows symlinks
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// Run processes every input file. It returns an error when the run could
// not start or when at least one file failed.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	if p.flags.Archive {
		archived, err := archive.ArchiveOutput(p.flags.OutputDir)
		if err != nil {
			return nil, err
		}
		if archived != "" {
			fmt.Printf("Previous output archived to: %s\n", archived)
		}
	}

	files, err := p.InputFiles()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.flags.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := p.fetcher.Prepare(); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	summary := &Summary{Files: len(files)}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fmt.Printf("Processing %d/%d: %s\n", i+1, len(files), filepath.Base(path))
		p.logger.Debug("processing file", zap.String("file", path))

		result, err := p.ProcessFile(ctx, path)
		summary.Expressions += result.expressions
		summary.AudioFetched += result.audioFetched
		summary.AudioSkipped += result.audioSkipped

		if err != nil {
			p.logger.Error("file failed",
				zap.String("file", err.Path),
				zap.String("stage", err.Stage),
				zap.String("category", err.Category()),
				zap.Error(err.Err),
			)
			summary.Failures = append(summary.Failures, err)
			continue
		}
		summary.Succeeded++
	}

	p.printSummary(summary)

	if len(summary.Failures) > 0 {
		return summary, fmt.Errorf("%d of %d files failed", len(summary.Failures), summary.Files)
	}
	return summary, nil
}

// ProcessFile converts one input file. Export files are only written once
// every row decoded and projected.
func (p *Processor) ProcessFile(ctx context.Context, path string) (fileResult, *FileError) {
	var result fileResult
	fail := func(stage string, err error) (fileResult, *FileError) {
		return result, &FileError{Path: path, Stage: stage, Err: err}
	}

	tbl, err := markup.ReadFile(path)
	if err != nil {
		return fail(StageIngest, err)
	}

	expressions, err := p.decoder.Decode(tbl)
	if err != nil {
		return fail(StageDecode, err)
	}
	result.expressions = len(expressions)
	p.logger.Debug("decoded table",
		zap.String("file", path),
		zap.Int("rows", len(tbl.Rows)),
		zap.Int("expressions", len(expressions)),
	)

	if p.transcriber != nil {
		filled, err := p.transcriber.Fill(ctx, expressions)
		if err != nil {
			return fail(StageTranscribe, err)
		}
		if filled > 0 {
			p.logger.Info("filled transcriptions", zap.String("file", path), zap.Int("count", filled))
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	writer := anki.NewWriter(&anki.WriterOptions{
		OutputPath: filepath.Join(p.flags.OutputDir, stem+".csv"),
		Delimiter:  ';',
	})

	if p.flags.Inspect {
		if err := writer.WriteExpressions(expressions); err != nil {
			return fail(StageExport, err)
		}
		return result, nil
	}

	cards, err := p.projector.ProjectAll(expressions)
	if err != nil {
		return fail(StageProject, err)
	}

	if !p.flags.SkipAudio {
		for i, card := range cards {
			fetched, err := p.fetcher.Fetch(ctx, audio.Item{
				Ref:       expressions[i].Audio,
				SourceDir: filepath.Dir(path),
				Filename:  card.AudioFile,
			})
			if err != nil {
				return fail(StageAudio, err)
			}
			if fetched.Skipped {
				result.audioSkipped++
			} else {
				result.audioFetched++
			}
		}
	}

	// The package is built first so a failure leaves no CSV behind
	var apkgPath string
	if p.flags.APKG {
		builder := anki.NewPackageBuilder(fmt.Sprintf("%s::%s", p.flags.DeckName, stem), p.fetcher.MediaDir())
		builder.AddCards(cards...)

		apkgPath = filepath.Join(p.flags.OutputDir, stem+".apkg")
		if err := builder.Build(apkgPath); err != nil {
			return fail(StageExport, err)
		}
	}

	if err := writer.WriteFlashcards(cards); err != nil {
		if apkgPath != "" {
			os.Remove(apkgPath)
		}
		return fail(StageExport, err)
	}
	fmt.Printf("  Wrote %d cards to %s\n", len(cards), writer.OutputPath())
	if apkgPath != "" {
		fmt.Printf("  Anki package created: %s\n", apkgPath)
	}

	return result, nil
}

func (p *Processor) printSummary(s *Summary) {
	fmt.Printf("\n=== Processing Summary ===\n")
	fmt.Printf("Files: %d\n", s.Files)
	fmt.Printf("Succeeded: %d\n", s.Succeeded)
	fmt.Printf("Expressions: %d\n", s.Expressions)
	if !p.flags.Inspect && !p.flags.SkipAudio {
		fmt.Printf("Audio downloaded: %d, already present: %d\n", s.AudioFetched, s.AudioSkipped)
	}
	if len(s.Failures) > 0 {
		fmt.Printf("Failed: %d\n", len(s.Failures))
		for _, f := range s.Failures {
			fmt.Printf("  - %s [%s]: %v\n", filepath.Base(f.Path), f.Category(), f.Err)
		}
	}
}
