package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type Config struct {
	Level string `yaml:"log-level" default:"info"`
	// Dir receives one file per level when set
	Dir     string `yaml:"log-dir-out"`
	NoColor bool   `yaml:"no-color"`
}

func (c *Config) InstallFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, "log-level", c.Level, "Log level (debug|info|warn|error)")
	flags.StringVar(&c.Dir, "log-dir-out", c.Dir, "Also write logs to <dir>/<level>.log")
	flags.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable colored output")
}

// New builds the logger shared by a run. Every entry carries a run id so
// that runs appended to the same log directory can be told apart.
func New(c Config, out io.Writer) (*log.Entry, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	logger := log.New()
	logger.Out = out
	logger.Level = level
	logger.Formatter = &log.TextFormatter{
		DisableColors: c.NoColor,
		FullTimestamp: true,
	}
	if c.Dir != "" {
		if err := addFileLogger(logger, c.Dir); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
	}
	return logger.WithField("run", uuid.New().String()[:8]), nil
}

func addFileLogger(logger *log.Logger, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	logger.Hooks.Add(lfshook.NewHook(lfshook.PathMap{
		log.DebugLevel: filepath.Join(dir, "debug.log"),
		log.InfoLevel:  filepath.Join(dir, "info.log"),
		log.WarnLevel:  filepath.Join(dir, "warn.log"),
		log.ErrorLevel: filepath.Join(dir, "error.log"),
		log.FatalLevel: filepath.Join(dir, "fatal.log"),
	}, &log.JSONFormatter{}))
	return nil
}
