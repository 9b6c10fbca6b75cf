package grep

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taoky/hourlog/pkg/fileiter"
	"github.com/taoky/hourlog/pkg/parser"
)

const (
	lineA = `192.0.2.1 - - [15/Mar/2024:09:12:01 +0000] "GET /index.html HTTP/1.1" 200 512 "-" "curl/8.0"`
	lineB = `198.51.100.7 - - [16/Mar/2024:23:59:59 +0000] "GET /shop HTTP/1.1" 200 10 "-" "Mozilla/5.0"`
	lineC = `2001:db8::5 - - [17/Mar/2024:00:00:00 +0000] "POST /api HTTP/1.1" 201 0 "-" "Go-http-client/1.1"`
)

func newFilter(t *testing.T, args ...string) *Filter {
	t.Helper()
	f := &Filter{}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.InstallFlags(flags)
	require.NoError(t, flags.Parse(args))
	return f
}

func mustParse(t *testing.T, line string) parser.Record {
	t.Helper()
	r, err := parser.ParseCombined([]byte(line))
	require.NoError(t, err)
	return r
}

func TestFilterMatch(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		line    string
		wantErr error
	}{
		{"empty filter", nil, lineA, nil},
		{"cidr", []string{"--ip", "192.0.2.0/24"}, lineA, nil},
		{"bare address", []string{"--ip", "192.0.2.1"}, lineA, nil},
		{"other prefix", []string{"--ip", "10.0.0.0/8", "--ip", "198.51.100.0/24"}, lineA, ErrNoPrefixMatch},
		{"ipv6", []string{"--ip", "2001:db8::/32"}, lineC, nil},
		{"request", []string{"--request-contains", "/shop"}, lineB, nil},
		{"request miss", []string{"--request-contains", "/shop"}, lineA, ErrRequestNoMatch},
		{"inside range", []string{"-r", "15/3/2024-16/3/2024"}, lineB, nil},
		{"after range", []string{"-r", "15/3/2024-16/3/2024"}, lineC, ErrOutsideDateRange},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFilter(t, tc.args...)
			err := f.Match(mustParse(t, tc.line))
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestFilterBadFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.SetOutput(&bytes.Buffer{})
	(&Filter{}).InstallFlags(flags)
	assert.Error(t, flags.Parse([]string{"--ip", "not-an-ip"}))
	assert.Error(t, flags.Parse([]string{"-r", "16/3/2024-15/3/2024"}))
}

func TestFilterIsEmpty(t *testing.T) {
	assert.True(t, newFilter(t).IsEmpty())
	assert.False(t, newFilter(t, "-r", "1/1/2024-1/1/2024").IsEmpty())
}

func TestGrepFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "example.com")
	require.NoError(t, os.WriteFile(plain, []byte(strings.Join([]string{lineA, "garbage", lineB, lineC}, "\n")+"\n"), 0o644))

	archive := filepath.Join(dir, "example.com-Mar-2024.gz")
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte(lineA + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(archive, gz.Bytes(), 0o644))

	c := DefaultConfig()
	c.Filter = newFilter(t, "--ip", "192.0.2.0/24", "--ip", "2001:db8::/32")
	var out bytes.Buffer
	g, err := New(c, &out, nil)
	require.NoError(t, err)
	require.NoError(t, g.GrepFile(plain))
	require.NoError(t, g.GrepFile(archive))

	assert.Equal(t, lineA+"\n"+lineC+"\n"+lineA+"\n", out.String())
	assert.EqualValues(t, 3, g.Matched)

	assert.ErrorIs(t, g.GrepFile(filepath.Join(dir, "missing")), os.ErrNotExist)
}

func TestNewUnknownParser(t *testing.T) {
	c := DefaultConfig()
	c.Parser = "no-such-parser"
	_, err := New(c, &bytes.Buffer{}, nil)
	assert.Error(t, err)
}

type brokenWriter struct{}

var errBrokenPipe = errors.New("broken pipe")

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errBrokenPipe
}

func TestGrepWriteError(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "example.com")
	require.NoError(t, os.WriteFile(filename, []byte("garbage\n"+lineA+"\n"+lineB+"\n"), 0o644))

	g, err := New(DefaultConfig(), brokenWriter{}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, g.GrepFile(filename), errBrokenPipe)
	assert.Zero(t, g.Matched)
}

func TestGrepLongLine(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "example.com")
	data := lineA + "\n" + strings.Repeat("x", 2*fileiter.MaxLineSize) + "\n" + lineB + "\n"
	require.NoError(t, os.WriteFile(filename, []byte(data), 0o644))

	var out bytes.Buffer
	g, err := New(DefaultConfig(), &out, nil)
	require.NoError(t, err)
	require.NoError(t, g.GrepFile(filename))
	assert.Equal(t, lineA+"\n"+lineB+"\n", out.String())
}
