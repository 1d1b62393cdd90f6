// Command mcp exposes the summarizer as a Model Context Protocol tool over
// stdio. Logs go to stderr; stdout carries the protocol.
//
// Tool summarize_text: {"text", "num_sentences"} -> {"status", "summary",
// "keywords", "error"}.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/kauebrandao/textsummarizer/internal/annotator"
	"github.com/kauebrandao/textsummarizer/internal/summarizer"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/validator"
	"github.com/kauebrandao/textsummarizer/pkg/config"
	apperrors "github.com/kauebrandao/textsummarizer/pkg/errors"
	"github.com/kauebrandao/textsummarizer/pkg/logger"
	"github.com/kauebrandao/textsummarizer/pkg/resilience"
)

const toolSummarize = "summarize_text"

type SummarizeRequest struct {
	Text         string `json:"text"`
	NumSentences int    `json:"num_sentences"`
}

type SummarizeResponse struct {
	Status   string   `json:"status"`
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type toolServer struct {
	engine  *summarizer.Engine
	limits  validator.Limits
	timeout time.Duration
	logger  *slog.Logger
}

func (s *toolServer) handleSummarize(_ *server.Context, req SummarizeRequest) (SummarizeResponse, error) {
	if err := validator.Validate(req.Text, req.NumSentences, s.limits); err != nil {
		return SummarizeResponse{Status: "error", Error: apperrors.Detail(err)}, nil
	}
	res, err := resilience.Call(context.Background(), s.timeout, toolSummarize, func(ctx context.Context) (*summarizer.Result, error) {
		return s.engine.Summarize(ctx, req.Text, req.NumSentences)
	})
	if err != nil {
		s.logger.Error("summarization failed", "error", err)
		return SummarizeResponse{Status: "error", Error: validator.MsgProcessingFailure + err.Error()}, nil
	}
	s.logger.Info("summary created", "text_bytes", len(req.Text), "returned", len(res.Sentences))
	return SummarizeResponse{Status: "success", Summary: res.Summary, Keywords: res.Keywords}, nil
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ann, err := annotator.Shared(cfg.Annotator, nil)
	if err != nil {
		slog.Error("failed to initialize annotator", "error", err)
		os.Exit(1)
	}
	ts := &toolServer{
		engine:  summarizer.NewFromConfig(ann, cfg.Summarizer, cfg.Tracing.Enabled),
		limits:  validator.Limits{MaxTextBytes: cfg.Summarizer.MaxTextBytes},
		timeout: cfg.Server.RequestTimeout,
		logger:  slog.Default().With("component", "mcp"),
	}

	srv := server.NewServer("textsummarizer").
		Tool(toolSummarize, "Summarize Portuguese text by extracting its most important sentences and keywords", ts.handleSummarize)

	slog.Info("mcp server starting", "tool", toolSummarize, "annotator", ann.Name())
	if err := srv.AsStdio().Run(); err != nil {
		slog.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
