package analyze

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/taoky/hourlog/pkg/logging"
	"github.com/taoky/hourlog/pkg/registry"
	"github.com/taoky/hourlog/pkg/util"
	"gopkg.in/yaml.v3"
)

// SourceConfig says where the registry and the per-user logs live.
type SourceConfig struct {
	Registry string `yaml:"registry" default:"/etc/userdatadomains"`
	// LogDir is a path template, {user} is replaced by the domain owner.
	LogDir     string `yaml:"log-dir" default:"/home/{user}/logs"`
	SSLSuffix  string `yaml:"ssl-suffix" default:"-ssl_log"`
	NoArchives bool   `yaml:"no-archives"`
}

func (c *SourceConfig) InstallFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Registry, "registry", c.Registry, "User/domain registry file")
	flags.StringVar(&c.LogDir, "log-dir", c.LogDir, "Per-user log directory ({user} is substituted)")
	flags.StringVar(&c.SSLSuffix, "ssl-suffix", c.SSLSuffix, "Suffix of the SSL log next to the domain log (e.g. -ssl_log or -ssl-log)")
	flags.BoolVar(&c.NoArchives, "no-archives", c.NoArchives, "Do not read this month's .gz archives")
}

// Validate rejects an empty SSL suffix: the SSL logs would be the plain
// logs again and every line would be counted twice.
func (c *SourceConfig) Validate() error {
	if c.SSLSuffix == "" {
		return errors.New("ssl-suffix must not be empty")
	}
	if c.LogDir == "" {
		return errors.New("log-dir must not be empty")
	}
	return nil
}

func (c *SourceConfig) LoadRegistry() (*registry.Registry, error) {
	return registry.Load(c.Registry)
}

type AnalyzerConfig struct {
	SourceConfig `yaml:",inline"`

	Domain        string             `yaml:"domain"`
	DateRange     util.DateRangeFlag `yaml:"daterange"`
	Format        FormatFlag         `yaml:"format" default:"text"`
	Parser        string             `yaml:"parser" default:"combined"`
	Progress      bool               `yaml:"progress"`
	SortBy        SortByFlag         `yaml:"sort-by" default:"count"`
	VerboseAll    bool               `yaml:"verbose-all"`
	VerboseDomain bool               `yaml:"verbose-domain"`
	VerboseLog    bool               `yaml:"verbose-log"`
	Workers       int                `yaml:"workers" default:"4"`

	Log logging.Config `yaml:",inline"`
}

func (c *AnalyzerConfig) InstallFlags(flags *pflag.FlagSet) {
	c.SourceConfig.InstallFlags(flags)
	c.Log.InstallFlags(flags)

	flags.StringVarP(&c.Domain, "domain", "d", c.Domain, "Only report this domain")
	flags.VarP(&c.DateRange, "daterange", "r", "Date range dd/mm/yyyy-dd/mm/yyyy, both ends included (default yesterday and today)")
	flags.VarP(&c.Format, "format", "f", "Output format (text|table|json)")
	flags.StringVarP(&c.Parser, "parser", "p", c.Parser, "Log parser (see \"hourlog list parsers\")")
	flags.BoolVar(&c.Progress, "progress", c.Progress, "Show a progress bar on stderr")
	flags.VarP(&c.SortBy, "sort-by", "S", "Order of IPs inside an hour (count|ip)")
	flags.BoolVarP(&c.VerboseAll, "verbose-all", "v", c.VerboseAll, "Trace both domains and log files")
	flags.BoolVar(&c.VerboseDomain, "verbose-domain", c.VerboseDomain, "Trace each domain")
	flags.BoolVar(&c.VerboseLog, "verbose-log", c.VerboseLog, "Trace each log file")
	flags.IntVarP(&c.Workers, "workers", "j", c.Workers, "Number of domains analyzed in parallel")
}

func (c *AnalyzerConfig) TraceDomains() bool {
	return c.VerboseDomain || c.VerboseAll
}

func (c *AnalyzerConfig) TraceLogs() bool {
	return c.VerboseLog || c.VerboseAll
}

func (c *AnalyzerConfig) Validate() error {
	if err := c.SourceConfig.Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, ok := outputters[c.Format]; !ok {
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if _, ok := sortFuncs[c.SortBy]; !ok {
		return fmt.Errorf("unknown sort order %q", c.SortBy)
	}
	return nil
}

func DefaultConfig() AnalyzerConfig {
	var c AnalyzerConfig
	if err := defaults.Set(&c); err != nil {
		// only reachable with a malformed default tag
		panic(err)
	}
	return c
}

// LoadFile reads a YAML config file into c. Flags already set on the
// command line keep their value, so the precedence is
// defaults < file < flags.
func (c *AnalyzerConfig) LoadFile(filename string, flags *pflag.FlagSet) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	changed := make(map[string]string)
	if flags != nil {
		flags.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}
	var errs []error
	for name, value := range changed {
		if err := flags.Set(name, value); err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
