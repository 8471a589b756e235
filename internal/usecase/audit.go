package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"discount-audit/internal/domain"
	"discount-audit/internal/logger"
)

// AuditUseCase orchestrates one audit run: load, evaluate, summarize.
type AuditUseCase struct {
	repo   TableRepository
	runner Runner
	rules  *RuleSet
	logger *zap.Logger

	newRunID func() string
}

// NewAuditUseCase creates a new instance of the usecase.
func NewAuditUseCase(repo TableRepository, runner Runner, rules *RuleSet, log *zap.Logger) *AuditUseCase {
	return &AuditUseCase{
		repo:     repo,
		runner:   runner,
		rules:    rules,
		logger:   logger.OrNop(log),
		newRunID: uuid.NewString,
	}
}

// Audit performs the main audit logic for the report at path. Ingestion and
// schema failures abort the run before any evaluation happens.
func (uc *AuditUseCase) Audit(ctx context.Context, path string, opts domain.FilterOptions) (*domain.AuditReport, error) {
	runID := uc.newRunID()
	log := uc.logger.With(zap.String("run_id", runID), zap.String("source", path))

	// Step 1: Data Ingestion
	table, err := uc.repo.LoadTable(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("could not load report: %w", err)
	}
	log.Debug("report loaded", zap.Int("rows", len(table.Rows)))

	// Step 2: Normalization, filtering and rule evaluation
	result, err := uc.runner.Run(table, opts)
	if err != nil {
		return nil, fmt.Errorf("could not audit report: %w", err)
	}

	// Step 3: KPIs
	summary, distribution := uc.rules.Summarize(result)

	log.Info("audit finished",
		zap.Int("audited", summary.TransactionsAudited),
		zap.Int("deviated", summary.TransactionsDeviated),
		zap.Float64("compliance_pct", summary.CompliancePct),
		zap.Int("missing_discount", summary.MissingDiscountRows),
	)

	return &domain.AuditReport{
		RunID:        runID,
		Source:       path,
		Filter:       result.Filter,
		Summary:      summary,
		Distribution: distribution,
		Alerts:       result.Alerts,
		Records:      result.Records,
	}, nil
}
