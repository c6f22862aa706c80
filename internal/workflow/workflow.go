// Package workflow drives the enrichment pass: query the database, generate
// a competitor name per record, write it back, and email a report.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yapa-dev/techwatch/internal/mailer"
	"github.com/yapa-dev/techwatch/internal/metrics"
	"github.com/yapa-dev/techwatch/internal/notion"
	"github.com/yapa-dev/techwatch/internal/prompt"
	"github.com/yapa-dev/techwatch/internal/record"
	"github.com/yapa-dev/techwatch/internal/retry"
	"github.com/yapa-dev/techwatch/internal/util"
)

// DefaultStatusFilter selects the records awaiting enrichment.
const DefaultStatusFilter = "Debut"

// Source is the document-database surface the workflow needs.
type Source interface {
	Query(ctx context.Context, databaseID, statusFilter string) ([]notion.Page, error)
	UpdateCompetitorName(ctx context.Context, pageID, name string) error
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Mailer delivers one report.
type Mailer interface {
	Send(rep mailer.Report) error
}

// ErrInvalidInput marks a request rejected before any remote call.
type ErrInvalidInput struct {
	Field string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Result is the aggregate outcome returned to the caller. Success reflects
// the query and the completion of the loop, not per-record outcomes.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Options tunes the workflow; zero values fall back to defaults.
type Options struct {
	StatusFilter string
	Retry        retry.Options
}

// Workflow holds the collaborators for one process lifetime. Safe for
// concurrent use: all per-run state lives on the stack of Run.
type Workflow struct {
	source    Source
	generator Generator
	mailer    Mailer
	prompts   *prompt.Template
	logger    *zap.Logger
	opts      Options
}

func New(source Source, generator Generator, m Mailer, prompts *prompt.Template, logger *zap.Logger, opts Options) *Workflow {
	if prompts == nil {
		prompts = prompt.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.StatusFilter) == "" {
		opts.StatusFilter = DefaultStatusFilter
	}
	return &Workflow{
		source:    source,
		generator: generator,
		mailer:    m,
		prompts:   prompts,
		logger:    logger,
		opts:      opts,
	}
}

// Run executes one enrichment pass. It fails fast on missing inputs, fails
// the whole request when the initial query fails, and treats every
// per-record error as soft: logged, counted, and never propagated.
func (w *Workflow) Run(ctx context.Context, databaseID, recipientEmail string) (Result, error) {
	databaseID = strings.TrimSpace(databaseID)
	recipientEmail = strings.TrimSpace(recipientEmail)
	if databaseID == "" {
		return Result{}, &ErrInvalidInput{Field: "notionDatabaseId"}
	}
	if recipientEmail == "" {
		return Result{}, &ErrInvalidInput{Field: "recipientEmail"}
	}

	runID := uuid.NewString()
	logger := w.logger.With(zap.String("run", runID), zap.String("database", databaseID))
	runStart := time.Now()
	logger.Info("enrichment run start", zap.String("status_filter", w.opts.StatusFilter))

	queryStart := time.Now()
	pages, err := retry.Do(ctx, logger, func(ctx context.Context) ([]notion.Page, error) {
		return w.source.Query(ctx, databaseID, w.opts.StatusFilter)
	}, w.opts.Retry)
	if err != nil {
		logger.Error("database query failed", zap.String("error", util.RedactSecrets(err.Error())))
		return Result{}, err
	}
	logger.Info("database query complete",
		zap.Int("records", len(pages)),
		zap.Duration("duration", time.Since(queryStart).Round(time.Millisecond)),
	)

	for i, page := range pages {
		rec := record.MapReport(page)
		w.processRecord(ctx, logger, rec, recipientEmail, i+1, len(pages))
	}

	logger.Info("enrichment run complete",
		zap.Int("records", len(pages)),
		zap.Duration("duration", time.Since(runStart).Round(time.Millisecond)),
	)
	return Result{
		Success: true,
		Message: "The reports were sent by email successfully.",
	}, nil
}

// processRecord runs generation, extraction, write-back and notification for
// one record. Nothing in here aborts the loop.
func (w *Workflow) processRecord(ctx context.Context, logger *zap.Logger, rec record.ReportRecord, recipient string, pos, total int) {
	metrics.RecordsProcessed.Inc()
	logger = logger.With(zap.String("page", rec.PageID), zap.String("progress", fmt.Sprintf("%d/%d", pos, total)))

	p := w.prompts.Build(rec)

	var generated string
	text, err := w.generator.Generate(ctx, p)
	if err != nil {
		metrics.GenerationFailures.Inc()
		logger.Warn("generation failed", zap.String("error", util.RedactSecrets(err.Error())))
	} else {
		generated = text
	}

	name, ok := w.prompts.ParseName(generated)
	if ok {
		metrics.NameExtractions.WithLabelValues("hit").Inc()
	} else {
		metrics.NameExtractions.WithLabelValues("miss").Inc()
		if generated != "" {
			logger.Info("competitor name not found in generated text")
		}
	}

	if ok {
		if err := w.source.UpdateCompetitorName(ctx, rec.PageID, name); err != nil {
			metrics.PatchFailures.Inc()
			logger.Warn("competitor name write-back failed", zap.String("error", util.RedactSecrets(err.Error())))
		} else {
			logger.Info("competitor name written back", zap.String("name", name))
		}
	}

	// Delivery is awaited so record N+1 never starts before record N's
	// report is out the door; a failed send is still soft.
	sendStart := time.Now()
	err = w.mailer.Send(mailer.Report{
		Recipient:     recipient,
		Record:        rec,
		Prompt:        p,
		GeneratedName: name,
	})
	if err != nil {
		metrics.EmailsSent.WithLabelValues("error").Inc()
		logger.Warn("report email failed", zap.String("error", util.RedactSecrets(err.Error())))
		return
	}
	metrics.EmailsSent.WithLabelValues("ok").Inc()
	logger.Info("report email sent",
		zap.String("title", rec.Title),
		zap.Duration("duration", time.Since(sendStart).Round(time.Millisecond)),
	)
}
