package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"discount-audit/internal/domain"
)

// Summarize computes the compliance KPIs and the alert distribution of result.
func (s *RuleSet) Summarize(result *domain.AuditResult) (domain.Summary, []domain.LabelCount) {
	summary := domain.Summary{
		TransactionsAudited:  len(result.Records),
		TransactionsDeviated: len(result.Alerts),
		DeviatedNetValue:     decimal.Zero,
	}

	if summary.TransactionsAudited > 0 {
		summary.CompliancePct = (1 - float64(summary.TransactionsDeviated)/float64(summary.TransactionsAudited)) * 100
	}

	for _, rec := range result.Records {
		if !rec.DiscountPct.Valid {
			summary.MissingDiscountRows++
		}
	}

	counts := make(map[domain.AlertLabel]int)
	for _, alert := range result.Alerts {
		counts[alert.Alert]++
		if alert.NetValue.Valid {
			summary.DeviatedNetValue = summary.DeviatedNetValue.Add(alert.NetValue.Decimal)
		}
	}

	distribution := make([]domain.LabelCount, 0, len(counts))
	for label, count := range counts {
		distribution = append(distribution, domain.LabelCount{Label: label, Count: count})
	}
	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Count != distribution[j].Count {
			return distribution[i].Count > distribution[j].Count
		}
		return s.priority(distribution[i].Label) < s.priority(distribution[j].Label)
	})

	return summary, distribution
}
