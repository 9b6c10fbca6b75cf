package analyze

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/taoky/hourlog/pkg/fileiter"
	"github.com/taoky/hourlog/pkg/parser"
	"github.com/taoky/hourlog/pkg/registry"
	"github.com/taoky/hourlog/pkg/util"
	"github.com/taoky/hourlog/pkg/window"
)

// Lines between two context checks while reading a source
const ctxCheckLines = 4096

type Summary struct {
	Domains        int    `json:"domains"`
	SourcesRead    int    `json:"sources_read"`
	SourcesMissing int    `json:"sources_missing"`
	SourcesFailed  int    `json:"sources_failed"`
	LinesMatched   uint64 `json:"lines_matched"`
	LinesSkipped   uint64 `json:"lines_skipped"`
	LinesOutside   uint64 `json:"lines_outside_window"`
	BytesRead      uint64 `json:"bytes_read"`
}

func (s *Summary) Add(o Summary) {
	s.Domains += o.Domains
	s.SourcesRead += o.SourcesRead
	s.SourcesMissing += o.SourcesMissing
	s.SourcesFailed += o.SourcesFailed
	s.LinesMatched += o.LinesMatched
	s.LinesSkipped += o.LinesSkipped
	s.LinesOutside += o.LinesOutside
	s.BytesRead += o.BytesRead
}

func (s Summary) String() string {
	return fmt.Sprintf("%d domains, %d/%d sources read (%d missing, %d failed), %s lines counted, %s skipped, %s outside window, %s read",
		s.Domains,
		s.SourcesRead, s.SourcesRead+s.SourcesMissing+s.SourcesFailed,
		s.SourcesMissing, s.SourcesFailed,
		humanize.Comma(int64(s.LinesMatched)),
		humanize.Comma(int64(s.LinesSkipped)),
		humanize.Comma(int64(s.LinesOutside)),
		humanize.IBytes(s.BytesRead))
}

// AnalyzeDomain reads every source of e and returns the counts of lines in
// win. now picks the archive month. A missing or unreadable source only loses its own lines: the table
// of a source is merged into the domain only after the source was read to
// the end. The returned table is never nil.
func (a *Analyzer) AnalyzeDomain(ctx context.Context, e registry.Entry, win window.Window, now time.Time) (*Table, Summary) {
	logger := a.logger.WithFields(log.Fields{"domain": e.Domain, "user": e.User})
	if a.Config.TraceDomains() {
		logger.Info("checking logs for domain")
	}

	table := NewTable()
	summary := Summary{Domains: 1}
	for _, src := range a.Config.Sources(e, now) {
		if ctx.Err() != nil {
			break
		}
		srcLogger := logger.WithFields(log.Fields{"path": src.Path, "kind": src.Kind})
		if a.Config.TraceLogs() {
			srcLogger.Info("checking for log file")
		}
		srcTable, srcSummary, err := a.analyzeSource(ctx, e.Domain, src, win)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			srcLogger.Warn("log file not found, skipping")
			summary.SourcesMissing++
			continue
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			continue
		case err != nil:
			srcLogger.WithError(err).Error("failed to read log file, its lines are not counted")
			summary.SourcesFailed++
			continue
		}
		if a.Config.TraceLogs() {
			srcLogger.WithFields(log.Fields{
				"matched": srcSummary.LinesMatched,
				"skipped": srcSummary.LinesSkipped,
				"outside": srcSummary.LinesOutside,
				"size":    humanize.IBytes(srcSummary.BytesRead),
			}).Info("processed log file")
		}
		table.Merge(srcTable)
		summary.Add(srcSummary)
	}

	if a.Config.TraceDomains() {
		logger.WithField("requests", table.Total()).Info("finished processing logs for domain")
	}
	return table, summary
}

// analyzeSource returns a nil table with any error. A decompressor failing
// on close fails the source too.
func (a *Analyzer) analyzeSource(ctx context.Context, domain string, src Source, win window.Window) (table *Table, summary Summary, err error) {
	r, err := util.OpenFile(src.Path)
	if err != nil {
		return nil, summary, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			table, err = nil, fmt.Errorf("close %s: %w", src.Path, cerr)
		}
	}()

	iter := fileiter.NewWithReader(r)
	table = NewTable()
	for n := 1; ; n++ {
		if n%ctxCheckLines == 0 && ctx.Err() != nil {
			return nil, summary, ctx.Err()
		}
		line, err := iter.Next()
		if errors.Is(err, fileiter.ErrLineTooLong) {
			summary.LinesSkipped++
			continue
		}
		if err != nil {
			return nil, summary, fmt.Errorf("read %s at line %d: %w", src.Path, n, err)
		}
		if line == nil {
			break
		}
		key, err := a.handleLine(domain, line, win)
		switch {
		case errors.Is(err, errOutsideWindow):
			summary.LinesOutside++
		case err != nil:
			summary.LinesSkipped++
		default:
			table.Inc(key)
			summary.LinesMatched++
		}
	}
	summary.SourcesRead = 1
	summary.BytesRead = iter.BytesRead()
	return table, summary, nil
}

var errOutsideWindow = errors.New("outside date window")

func (a *Analyzer) handleLine(domain string, line []byte, win window.Window) (StatKey, error) {
	record, err := a.logParser.Parse(line)
	if err != nil {
		return StatKey{}, err
	}
	t, err := parser.NormalizeTime(record.Timestamp)
	if err != nil {
		return StatKey{}, err
	}
	if !win.ContainsTime(t) {
		return StatKey{}, errOutsideWindow
	}
	return StatKey{Domain: domain, Hour: parser.HourBucket(t), IP: record.Client}, nil
}
