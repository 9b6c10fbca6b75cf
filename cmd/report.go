package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/taoky/hourlog/pkg/analyze"
	"github.com/taoky/hourlog/pkg/logging"
	"github.com/taoky/hourlog/pkg/util"
)

const configEnv = "HOURLOG_CONFIG"

// loadConfig applies the YAML file named by --config (or $HOURLOG_CONFIG)
// under the flags given on the command line.
func loadConfig(config *analyze.AnalyzerConfig, configFile string, flags *pflag.FlagSet) error {
	if configFile == "" {
		configFile = os.Getenv(configEnv)
	}
	if configFile == "" {
		return nil
	}
	return config.LoadFile(configFile, flags)
}

func reportWithConfig(cmd *cobra.Command, config analyze.AnalyzerConfig) error {
	logger, err := logging.New(config.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	analyzer, err := analyze.NewAnalyzer(config, logger)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	analyzer.ProgressOutput = cmd.ErrOrStderr()
	outputter, err := analyze.GetOutputter(config.Format)
	if err != nil {
		return err
	}
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	if reg.Skipped > 0 {
		logger.WithFields(log.Fields{
			"registry": config.Registry,
			"skipped":  reg.Skipped,
		}).Debug("malformed registry lines skipped")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	result, err := analyzer.Run(ctx, reg)
	if err != nil {
		return err
	}

	octx := analyze.NewOutputContext(result, config.SortBy, config.Log.NoColor)
	if err := outputter.Print(cmd.OutOrStdout(), octx); err != nil {
		return err
	}
	logger.Info(result.Summary.String())
	return nil
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Count requests per domain, hour and client IP",
		Args:  cobra.NoArgs,
	}
	config := analyze.DefaultConfig()
	config.InstallFlags(cmd.Flags())
	var configFile, cpuProfile string
	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file (default $"+configEnv+")")
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().MarkHidden("cpuprofile")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(&config, configFile, cmd.Flags()); err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return util.RunCPUProfile(cpuProfile, func() error {
			return reportWithConfig(cmd, config)
		})
	}
	return cmd
}
