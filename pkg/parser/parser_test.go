package parser

import (
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCombined(t *testing.T) {
	as := assert.New(t)
	line := `123.45.67.8 - - [12/Mar/2023:00:15:32 +0800] "GET /path/to/a/file HTTP/1.1" 200 3009 "-" "curl/8.0"`
	r, err := ParseCombined([]byte(line))
	if as.NoError(err) {
		as.Equal("123.45.67.8", r.Client)
		as.Equal("12/Mar/2023:00:15:32 +0800", r.Timestamp)
		as.Equal("GET /path/to/a/file HTTP/1.1", r.Request)
		as.Equal(200, r.Status)
		as.Equal("3009", r.Size)
		as.Equal("-", r.Referer)
		as.Equal("curl/8.0", r.UserAgent)
	}

	// size "-" is kept verbatim, trailing fields are ignored
	line = `2001:db8::1 - bob [01/Apr/2024:23:59:59 -0500] "HEAD / HTTP/2.0" 304 - "https://example.com/" "Mozilla/5.0" example.com 0.001`
	r, err = ParseCombined([]byte(line))
	if as.NoError(err) {
		as.Equal("2001:db8::1", r.Client)
		as.Equal(304, r.Status)
		as.Equal("-", r.Size)
		as.Equal("https://example.com/", r.Referer)
	}
}

func TestParseCombinedNoMatch(t *testing.T) {
	testCases := []string{
		``,
		`garbage`,
		// no closing bracket
		`1.2.3.4 - - [15/Mar/2024:09:47:33 +0000 "GET / HTTP/1.1" 200 1 "-" "ua"`,
		// status is not three digits
		`1.2.3.4 - - [15/Mar/2024:09:47:33 +0000] "GET / HTTP/1.1" 20 1 "-" "ua"`,
		// empty user agent
		`1.2.3.4 - - [15/Mar/2024:09:47:33 +0000] "GET / HTTP/1.1" 200 1 "-" ""`,
		// leading whitespace
		` 1.2.3.4 - - [15/Mar/2024:09:47:33 +0000] "GET / HTTP/1.1" 200 1 "-" "ua"`,
	}
	for _, c := range testCases {
		_, err := ParseCombined([]byte(c))
		assert.ErrorIs(t, err, ErrNoMatch, "line %q", c)
	}
}

func TestNormalizeTime(t *testing.T) {
	as := assert.New(t)
	tm, err := NormalizeTime("15/Mar/2024:09:47:33 +0800")
	if as.NoError(err) {
		// zone is dropped, wall clock kept
		as.Equal(time.Date(2024, time.March, 15, 9, 47, 33, 0, time.UTC), tm)
		as.Equal("2024-03-15 09:00", HourBucket(tm))
	}

	tm, err = NormalizeTime("01/Jan/2025:00:00:00")
	if as.NoError(err) {
		as.Equal("2025-01-01 00:00", HourBucket(tm))
	}

	bad := []string{
		"",
		"15/Mar/2024",
		"15/Foo/2024:09:47:33 +0000",
		"30/Feb/2024:09:47:33 +0000",
		"15/Mar/2024:25:47:33 +0000",
		"2024-03-15T09:47:33Z",
		"5/Mar/2024:09:47:33 +0000",
	}
	for _, s := range bad {
		_, err := NormalizeTime(s)
		as.ErrorIs(err, ErrBadTimestamp, "timestamp %q", s)
	}
}

func TestGetParser(t *testing.T) {
	as := assert.New(t)
	p, err := GetParser("combined")
	require.NoError(t, err)
	r, err := p.Parse([]byte(`10.0.0.1 - - [15/Mar/2024:09:47:33 +0000] "GET / HTTP/1.1" 200 12 "-" "ua"`))
	if as.NoError(err) {
		as.Equal("10.0.0.1", r.Client)
	}

	_, err = GetParser("nginx-combined")
	as.NoError(err)

	_, err = GetParser("no-such-parser")
	as.Error(err)

	as.Contains(Names(), "combined")
	as.NotContains(Names(), "nginx-combined")
	as.GreaterOrEqual(len(All()), 3)
}

func TestGoAccessParserConfig(t *testing.T) {
	_, err := NewGoAccessParser("")
	assert.Error(t, err)

	_, err = NewGoAccessParser(filepath.Join(t.TempDir(), "missing.conf"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
