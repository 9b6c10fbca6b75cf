package analyze

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/taoky/hourlog/pkg/parser"
	"github.com/taoky/hourlog/pkg/registry"
	"github.com/taoky/hourlog/pkg/window"
)

type Analyzer struct {
	Config AnalyzerConfig

	// Now is the run clock. It picks the archive month and the default
	// window.
	Now func() time.Time

	// ProgressOutput receives the progress bar, stderr by default
	ProgressOutput io.Writer

	stats   *Table
	summary Summary
	mu      sync.Mutex

	logParser parser.Parser
	logger    *log.Entry
}

// Result is everything a report needs from one run.
type Result struct {
	Window window.Window
	// Domains is the report order: registry order, or the requested
	// domain alone.
	Domains []string
	Table   *Table
	Summary Summary
}

func NewAnalyzer(c AnalyzerConfig, logger *log.Entry) (*Analyzer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logParser, err := parser.GetParser(c.Parser)
	if err != nil {
		return nil, fmt.Errorf("invalid parser: %w", err)
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Analyzer{
		Config:         c,
		Now:            time.Now,
		ProgressOutput: os.Stderr,
		logParser:      logParser,
		logger:         logger,
	}, nil
}

// Window is the configured date range, or yesterday and today.
func (a *Analyzer) Window() window.Window {
	return a.windowAt(a.Now())
}

func (a *Analyzer) windowAt(now time.Time) window.Window {
	if w := a.Config.DateRange.Window(); !w.IsZero() {
		return w
	}
	return window.Default(now)
}

// Run analyzes every domain of reg, or only Config.Domain when set, with
// up to Config.Workers domains in flight. A requested domain missing from
// reg gives an empty result. The clock is read once, so every domain uses
// the same archive month. Run returns ctx.Err() when cancelled.
func (a *Analyzer) Run(ctx context.Context, reg *registry.Registry) (*Result, error) {
	now := a.Now()
	win := a.windowAt(now)
	entries := reg.Entries()
	domains := make([]string, 0, len(entries))
	if a.Config.Domain != "" {
		domains = append(domains, a.Config.Domain)
		e, ok := reg.Lookup(a.Config.Domain)
		if ok {
			entries = []registry.Entry{e}
		} else {
			a.logger.WithField("domain", a.Config.Domain).Warn("domain not found in registry")
			entries = nil
		}
	} else {
		for _, e := range entries {
			domains = append(domains, e.Domain)
		}
	}

	a.mu.Lock()
	a.stats = NewTable()
	a.summary = Summary{}
	a.mu.Unlock()

	a.logger.WithFields(log.Fields{
		"domains": len(entries),
		"window":  win.String(),
		"workers": a.Config.Workers,
	}).Debug("starting analysis")

	var bar *progressbar.ProgressBar
	if a.Config.Progress {
		bar = progressbar.NewOptions(len(entries),
			progressbar.OptionSetWriter(a.ProgressOutput),
			progressbar.OptionSetDescription("domains"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	sem := make(chan struct{}, a.Config.Workers)
	var wg sync.WaitGroup
dispatch:
	for _, e := range entries {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}
		wg.Add(1)
		go func(e registry.Entry) {
			defer wg.Done()
			defer func() { <-sem }()
			table, summary := a.AnalyzeDomain(ctx, e, win, now)
			a.merge(table, summary)
			if bar != nil {
				bar.Add(1)
			}
		}(e)
	}
	wg.Wait()
	if bar != nil {
		bar.Finish()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return &Result{
		Window:  win,
		Domains: domains,
		Table:   a.stats,
		Summary: a.summary,
	}, nil
}

func (a *Analyzer) merge(table *Table, summary Summary) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.Merge(table)
	a.summary.Add(summary)
}
