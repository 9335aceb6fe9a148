package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"DomainWatch/config"
	"DomainWatch/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "config.yaml"

func Execute(ctx context.Context) {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "domainwatch [domain ...]",
		Short:        "Track domain registration expiry and alert before domains lapse",
		Long:         "Refreshes every monitored domain from WHOIS/RDAP, adds any domains given as arguments, e-mails a single notice for domains close to expiry and rewrites the record file.",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}
}

func run(ctx context.Context, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	path := strings.TrimSpace(os.Getenv(config.EnvConfigPath))
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	application, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup_failed", zap.Error(err))
		return err
	}

	if len(args) > 0 {
		logger.Info("domains_requested", zap.Strings("domains", args))
	}
	report, err := application.Run(ctx, args)
	if err != nil {
		logger.Error("run_failed", zap.Error(err))
		return err
	}
	logger.Info("records_saved",
		zap.String("file", cfg.RecordFile),
		zap.Int("total", report.Total),
		zap.Strings("notified", report.Notified),
	)
	return nil
}
