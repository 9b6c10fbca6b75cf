package grep

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/taoky/hourlog/pkg/fileiter"
	"github.com/taoky/hourlog/pkg/parser"
	"github.com/taoky/hourlog/pkg/util"
)

type Grepper struct {
	f      *Filter
	p      parser.Parser
	out    io.Writer
	logger *log.Entry

	// Matched counts the lines written so far
	Matched uint64
}

type GrepperConfig struct {
	Filter *Filter
	Parser string
}

func DefaultConfig() GrepperConfig {
	return GrepperConfig{
		Filter: &Filter{},
		Parser: "combined",
	}
}

func (c *GrepperConfig) InstallFlags(flags *pflag.FlagSet) {
	c.Filter.InstallFlags(flags)

	flags.StringVarP(&c.Parser, "parser", "p", c.Parser, "Log parser (see \"hourlog list parsers\")")
}

func New(c GrepperConfig, w io.Writer, logger *log.Entry) (*Grepper, error) {
	p, err := parser.GetParser(c.Parser)
	if err != nil {
		return nil, err
	}
	if c.Filter == nil {
		c.Filter = &Filter{}
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	g := &Grepper{
		f:      c.Filter,
		p:      p,
		out:    w,
		logger: logger,
	}
	return g, nil
}

func (g *Grepper) IsEmpty() bool {
	return g.f.IsEmpty()
}

// RunLoop writes every line of iter that parses and passes the filter.
// Lines that do not parse are logged at debug level and dropped. A write
// error stops the loop.
func (g *Grepper) RunLoop(iter fileiter.Iterator) error {
	for {
		line, err := iter.Next()
		if errors.Is(err, fileiter.ErrLineTooLong) {
			g.logger.Debug("grep: overlong line skipped")
			continue
		}
		if err != nil {
			return err
		}
		if line == nil {
			break
		}
		if err := g.handleLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grepper) GrepFile(filename string) (err error) {
	f, err := util.OpenFile(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", filename, cerr)
		}
	}()
	if err := g.RunLoop(fileiter.NewWithReader(f)); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	return nil
}

func (g *Grepper) handleLine(line []byte) error {
	record, err := g.p.Parse(line)
	if err != nil {
		g.logger.WithError(err).WithField("line", string(line)).Debug("grep: line skipped")
		return nil
	}
	if g.f.Match(record) != nil {
		return nil
	}
	if _, err := fmt.Fprintf(g.out, "%s\n", line); err != nil {
		return err
	}
	g.Matched++
	return nil
}
