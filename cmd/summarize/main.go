// Command summarize prints the extractive summary and keywords of a text
// file, or of stdin when no file is given.
//
// Usage:
//
//	summarize -n 3 [-keywords 5] [-explain] [-json] [-config path] [file]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"

	"github.com/kauebrandao/textsummarizer/internal/annotator"
	"github.com/kauebrandao/textsummarizer/internal/summarizer"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/validator"
	"github.com/kauebrandao/textsummarizer/pkg/config"
	apperrors "github.com/kauebrandao/textsummarizer/pkg/errors"
	"github.com/kauebrandao/textsummarizer/pkg/logger"
	"github.com/kauebrandao/textsummarizer/pkg/resilience"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	keywordColor = color.New(color.FgGreen).SprintFunc()
	scoreColor   = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	numSentences := flag.Int("n", 3, "number of sentences in the summary")
	keywordCount := flag.Int("keywords", 0, "number of keywords (0 uses the configured value)")
	explain := flag.Bool("explain", false, "print the score of every selected sentence")
	asJSON := flag.Bool("json", false, "print the result as JSON")
	configPath := flag.String("config", "", "path to config file")
	noColor := flag.Bool("no-color", false, "disable coloured output")
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}

	if err := run(*configPath, *numSentences, *keywordCount, *explain, *asJSON, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorColor("erro:"), err)
		os.Exit(1)
	}
}

func run(configPath string, k, keywordCount int, explain, asJSON bool, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.SetupWriter(os.Stderr, cfg.Logging.Level, "text")
	if keywordCount > 0 {
		cfg.Summarizer.KeywordCount = keywordCount
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}
	if err := validator.Validate(text, k, validator.Limits{MaxTextBytes: cfg.Summarizer.MaxTextBytes}); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return errors.New(appErr.Message)
		}
		return err
	}

	ann, err := annotator.New(cfg.Annotator, nil)
	if err != nil {
		return fmt.Errorf("initializing annotator: %w", err)
	}
	engine := summarizer.NewFromConfig(ann, cfg.Summarizer, cfg.Tracing.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := resilience.Call(ctx, cfg.Server.RequestTimeout, "summarize", func(ctx context.Context) (*summarizer.Result, error) {
		return engine.Summarize(ctx, text, k)
	})
	if err != nil {
		return fmt.Errorf("%s%w", validator.MsgProcessingFailure, err)
	}
	slog.Debug("summary created", "sentences", res.SentenceCount, "returned", len(res.Sentences))

	if asJSON {
		out := map[string]any{"summary": res.Summary, "keywords": res.Keywords}
		if explain {
			out["sentences"] = res.Sentences
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printResult(os.Stdout, res, explain)
	return nil
}

func readInput(args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch len(args) {
	case 0:
		data, err = io.ReadAll(os.Stdin)
	case 1:
		data, err = os.ReadFile(args[0])
	default:
		return "", fmt.Errorf("expected at most one input file, got %d", len(args))
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func printResult(w io.Writer, res *summarizer.Result, explain bool) {
	fmt.Fprintln(w, headerColor("Resumo"))
	fmt.Fprintln(w, res.Summary)
	fmt.Fprintln(w)

	colored := make([]string, len(res.Keywords))
	for i, kw := range res.Keywords {
		colored[i] = keywordColor(kw)
	}
	fmt.Fprintf(w, "%s %s\n", headerColor("Palavras-chave:"), strings.Join(colored, ", "))

	if !explain || len(res.Sentences) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s (%d de %d)\n", headerColor("Sentenças selecionadas"), len(res.Sentences), res.SentenceCount)
	for _, s := range res.Sentences {
		fmt.Fprintf(w, "  [%d] %s freq=%d tema=%d posição=%d  %s\n",
			s.Position+1, scoreColor(fmt.Sprintf("%3d", s.Score)), s.Frequency, s.Theme, s.Location, s.Text)
	}
}
