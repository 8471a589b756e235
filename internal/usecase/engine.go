package usecase

import (
	"fmt"

	"go.uber.org/zap"

	"discount-audit/internal/domain"
	"discount-audit/internal/logger"
)

// Runner evaluates a raw table under the given filter options.
type Runner interface {
	Run(table *domain.Table, opts domain.FilterOptions) (*domain.AuditResult, error)
}

// Engine normalizes, filters and evaluates sales reports. It holds no state
// besides the read-only rule set, so a run is a pure function of its input.
type Engine struct {
	rules  *RuleSet
	logger *zap.Logger
}

// NewEngine creates a new engine for the given rule set.
func NewEngine(rules *RuleSet, log *zap.Logger) *Engine {
	return &Engine{rules: rules, logger: logger.OrNop(log)}
}

// Run performs the whole evaluation pass over table.
func (e *Engine) Run(table *domain.Table, opts domain.FilterOptions) (*domain.AuditResult, error) {
	// Step 1: Column normalization
	idx, err := indexColumns(NormalizeHeader(table.Header), e.logger)
	if err != nil {
		return nil, fmt.Errorf("normalize columns of %s: %w", table.Source, err)
	}

	records := make([]domain.TransactionRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		records = append(records, idx.toRecord(row, table.Line(i)))
	}

	// Step 2: Pre-filters
	kept, filterSummary := e.Filter(records, opts)
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %d rows read, %d excluded by employee zone, %d excluded by offers warehouse",
			domain.ErrEmptyResultAfterFilter, filterSummary.RowsRead,
			filterSummary.ExcludedByEmployeeZone, filterSummary.ExcludedByOffersWarehouse)
	}

	// Step 3: Rule evaluation
	result := e.Evaluate(kept)
	result.Filter = filterSummary
	return &result, nil
}

// Filter drops the rows rejected by any enabled switch. Each switch is tested
// against the record itself, so the switches are independent of each other.
func (e *Engine) Filter(records []domain.TransactionRecord, opts domain.FilterOptions) ([]domain.TransactionRecord, domain.FilterSummary) {
	summary := domain.FilterSummary{Options: opts, RowsRead: len(records)}

	kept := make([]domain.TransactionRecord, 0, len(records))
	for _, rec := range records {
		dropZone := opts.ExcludeEmployeeZones && e.rules.employeeZones[rec.SaleZone]
		dropWarehouse := opts.ExcludeOffersWarehouse && rec.WarehouseIs(e.rules.offersWarehouse)
		if dropZone {
			summary.ExcludedByEmployeeZone++
		}
		if dropWarehouse {
			summary.ExcludedByOffersWarehouse++
		}
		if dropZone || dropWarehouse {
			continue
		}
		kept = append(kept, rec)
	}

	summary.RowsKept = len(kept)
	return kept, summary
}

// Evaluate labels every record with the first rule it violates. The result
// preserves input order in both the full set and the alert subset.
func (e *Engine) Evaluate(records []domain.TransactionRecord) domain.AuditResult {
	result := domain.AuditResult{
		Records: make([]domain.AnnotatedRecord, 0, len(records)),
		Alerts:  make([]domain.AnnotatedRecord, 0),
	}

	missing := 0
	for _, rec := range records {
		annotated := domain.AnnotatedRecord{TransactionRecord: rec, Alert: e.rules.Classify(rec)}
		result.Records = append(result.Records, annotated)
		if annotated.Alert != domain.AlertOK {
			result.Alerts = append(result.Alerts, annotated)
		}
		if !rec.DiscountPct.Valid {
			missing++
		}
	}

	if missing > 0 {
		e.logger.Warn("records without a parseable discount were labeled OK", zap.Int("count", missing))
	}
	return result
}
