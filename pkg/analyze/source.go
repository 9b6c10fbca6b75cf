package analyze

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/taoky/hourlog/pkg/registry"
)

// ArchiveMonthFormat is the month stamp in archive names, e.g. "Mar-2024".
const ArchiveMonthFormat = "Jan-2006"

type SourceKind int

const (
	LiveLog SourceKind = iota
	ArchiveLog
)

func (k SourceKind) String() string {
	if k == ArchiveLog {
		return "archive"
	}
	return "live"
}

type Source struct {
	Path string
	Kind SourceKind
	SSL  bool
}

func (c *SourceConfig) UserLogDir(user string) string {
	return strings.ReplaceAll(c.LogDir, "{user}", user)
}

// Sources lists the files that may hold e's requests: the live log and its
// SSL twin, then the archives of now's month (unless disabled). Files of
// other months are never considered. A path is listed once, even when the
// SSL suffix makes two names equal.
func (c *SourceConfig) Sources(e registry.Entry, now time.Time) []Source {
	dir := c.UserLogDir(e.User)
	sslName := e.Domain + c.SSLSuffix
	sources := []Source{
		{Path: filepath.Join(dir, e.Domain), Kind: LiveLog},
		{Path: filepath.Join(dir, sslName), Kind: LiveLog, SSL: true},
	}
	if !c.NoArchives {
		month := now.Format(ArchiveMonthFormat)
		sources = append(sources,
			Source{Path: filepath.Join(dir, sslName+"-"+month+".gz"), Kind: ArchiveLog, SSL: true},
			Source{Path: filepath.Join(dir, e.Domain+"-"+month+".gz"), Kind: ArchiveLog},
		)
	}
	seen := make(map[string]struct{}, len(sources))
	return slices.DeleteFunc(sources, func(s Source) bool {
		if _, ok := seen[s.Path]; ok {
			return true
		}
		seen[s.Path] = struct{}{}
		return false
	})
}
