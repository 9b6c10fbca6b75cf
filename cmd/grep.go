package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"
	"github.com/taoky/hourlog/pkg/analyze"
	"github.com/taoky/hourlog/pkg/grep"
	"github.com/taoky/hourlog/pkg/logging"
)

// domainFiles lists the log files of domain the same way report reads them.
func domainFiles(sc *analyze.SourceConfig, domain string) ([]string, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	reg, err := sc.LoadRegistry()
	if err != nil {
		return nil, err
	}
	e, ok := reg.Lookup(domain)
	if !ok {
		return nil, fmt.Errorf("domain %q not found in %s", domain, sc.Registry)
	}
	var filenames []string
	for _, src := range sc.Sources(e, time.Now()) {
		filenames = append(filenames, src.Path)
	}
	return filenames, nil
}

func grepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grep [filename...]",
		Short: "Print log lines matching IP ranges or a date range",
		Long: "Print the raw log lines that parse and pass every given filter.\n" +
			"Lines are read from the given files, or from every log of --domain.",
	}
	config := grep.DefaultConfig()
	config.InstallFlags(cmd.Flags())
	sc := analyze.DefaultConfig().SourceConfig
	sc.InstallFlags(cmd.Flags())
	logConfig := analyze.DefaultConfig().Log
	logConfig.InstallFlags(cmd.Flags())
	var domain string
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "Read the logs of this domain")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		filenames := args
		if domain != "" {
			if len(args) > 0 {
				return errors.New("--domain and file arguments are exclusive")
			}
			var err error
			if filenames, err = domainFiles(&sc, domain); err != nil {
				return err
			}
		}
		if len(filenames) == 0 {
			return errors.New("no log file given, pass file names or --domain")
		}
		cmd.SilenceUsage = true

		logger, err := logging.New(logConfig, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		g, err := grep.New(config, cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}
		if g.IsEmpty() {
			logger.Warn("no filter given, every parsed line is printed")
		}
		for _, filename := range filenames {
			err = g.GrepFile(filename)
			switch {
			case domain != "" && errors.Is(err, fs.ErrNotExist):
				logger.WithField("path", filename).Debug("log file not found, skipping")
			case err != nil:
				return err
			}
		}
		logger.WithField("lines", g.Matched).Debug("grep finished")
		return nil
	}
	return cmd
}

