package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"discount-audit/internal/config"
	"discount-audit/internal/domain"
	"discount-audit/internal/logger"
)

const (
	cmdName = "auditor"
	cmdDesc = `Audit sales reports against discount-ceiling rules.`

	// ExitEmptyResult is returned when the filters leave nothing to audit.
	ExitEmptyResult = 2
)

// RootArgs holds the flags shared by every command.
type RootArgs struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	cfg *config.Config
	log *zap.Logger
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&ra.ConfigPath, "config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&ra.LogLevel, "log-level", "", "Log level, one of: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&ra.LogFormat, "log-format", "", "Log format, one of: json, console")
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	args := &RootArgs{}

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup(args),
		PersistentPostRun: func(*cobra.Command, []string) {
			if args.log != nil {
				_ = args.log.Sync()
			}
		},
	}

	args.AddFlags(cmd)
	cmd.AddCommand(NewAuditCmd(args), NewRulesCmd(args))

	return cmd
}

func setup(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(ra.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if ra.LogLevel != "" {
			cfg.Log.Level = ra.LogLevel
		}
		if ra.LogFormat != "" {
			cfg.Log.Format = ra.LogFormat
		}

		log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}

		ra.cfg = cfg
		ra.log = log
		return nil
	}
}

// ExitCode maps an error returned by the command tree to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrEmptyResultAfterFilter):
		return ExitEmptyResult
	default:
		return 1
	}
}
