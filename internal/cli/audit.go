package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"discount-audit/internal/domain"
	"discount-audit/internal/gateway"
	"discount-audit/internal/usecase"
)

const auditExamples = `
  # Audit a report with the default filters.
  auditor audit ventas_septiembre.csv

  # Include employee and physician sales, export alerts and the full listing.
  auditor audit ventas.xlsx --exclude-employee-zones=false \
    --alerts-out desvios.csv --full-out auditado.csv
`

// AuditArgs holds the flags of the audit command.
type AuditArgs struct {
	root *RootArgs

	ExcludeEmployeeZones   bool
	ExcludeOffersWarehouse bool
	AlertsOut              string
	FullOut                string
}

func (aa *AuditArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&aa.ExcludeEmployeeZones, "exclude-employee-zones", true,
		"Drop sales to the employee and physician zones before auditing")
	cmd.Flags().BoolVar(&aa.ExcludeOffersWarehouse, "exclude-offers-warehouse", true,
		"Drop sales from the offers warehouse before auditing")
	cmd.Flags().StringVar(&aa.AlertsOut, "alerts-out", "", "Write the alert rows to this CSV file")
	cmd.Flags().StringVar(&aa.FullOut, "full-out", "", "Write every audited row with its label to this CSV file")
}

// NewAuditCmd creates the audit command.
func NewAuditCmd(root *RootArgs) *cobra.Command {
	args := &AuditArgs{root: root}

	cmd := &cobra.Command{
		Use:     "audit FILE...",
		Short:   "Audit one or more sales reports (.csv or .xlsx)",
		Example: auditExamples,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			if (args.AlertsOut != "" || args.FullOut != "") && len(files) > 1 {
				return errors.New("--alerts-out and --full-out need exactly one input file")
			}
			return args.run(cmd, files)
		},
	}
	args.AddFlags(cmd)

	return cmd
}

func (aa *AuditArgs) filterOptions(cmd *cobra.Command) domain.FilterOptions {
	opts := domain.FilterOptions{
		ExcludeEmployeeZones:   aa.root.cfg.Filter.ExcludeEmployeeZones,
		ExcludeOffersWarehouse: aa.root.cfg.Filter.ExcludeOffersWarehouse,
	}
	if cmd.Flags().Changed("exclude-employee-zones") {
		opts.ExcludeEmployeeZones = aa.ExcludeEmployeeZones
	}
	if cmd.Flags().Changed("exclude-offers-warehouse") {
		opts.ExcludeOffersWarehouse = aa.ExcludeOffersWarehouse
	}
	return opts
}

func (aa *AuditArgs) run(cmd *cobra.Command, files []string) error {
	cfg := aa.root.cfg
	log := aa.root.log
	opts := aa.filterOptions(cmd)

	// --- Dependency Injection (Wiring the application) ---
	repo := gateway.NewFileTableRepository(gateway.ReaderOptions{
		HeaderRow: cfg.Ingest.HeaderRow,
		Encoding:  cfg.Ingest.Encoding,
		Delimiter: []rune(cfg.Ingest.Delimiter)[0],
	}, log)
	rules := usecase.NewRuleSet(cfg.Rules)
	engine := usecase.NewCachedEngine(usecase.NewEngine(rules, log))
	auditUseCase := usecase.NewAuditUseCase(repo, engine, rules, log)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	for _, file := range files {
		report, err := auditUseCase.Audit(cmd.Context(), file, opts)
		if errors.Is(err, domain.ErrEmptyResultAfterFilter) {
			log.Warn("nothing to audit after filtering", zap.String("source", file), zap.Error(err))
			return fmt.Errorf("%s: %w; try disabling --exclude-employee-zones or --exclude-offers-warehouse", file, err)
		}
		if err != nil {
			return fmt.Errorf("audit %s: %w", file, err)
		}

		if aa.AlertsOut != "" {
			if err := gateway.ExportCSV(aa.AlertsOut, domain.AlertExportColumns, report.Alerts); err != nil {
				return err
			}
		}
		if aa.FullOut != "" {
			if err := gateway.ExportCSV(aa.FullOut, domain.FullExportColumns, report.Records); err != nil {
				return err
			}
		}

		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if hits := engine.Hits(); hits > 0 {
		log.Debug("reused cached audit results", zap.Int("hits", hits))
	}
	return nil
}
