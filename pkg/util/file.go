package util

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

type filteredReader struct {
	cmd *exec.Cmd
	r   io.ReadCloser
	f   io.Closer
}

func (fr *filteredReader) Read(p []byte) (n int, err error) {
	return fr.r.Read(p)
}

func (fr *filteredReader) Close() error {
	// Closing the pipe first makes a filter blocked on write exit
	rerr := fr.r.Close()
	return errors.Join(fr.cmd.Wait(), rerr, fr.f.Close())
}

func filterByCommand(f io.ReadCloser, args []string) (io.ReadCloser, error) {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = f
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &filteredReader{cmd: cmd, r: stdout, f: f}, nil
}

type gzipReader struct {
	*gzip.Reader
	f io.Closer
}

func (g *gzipReader) Close() error {
	return errors.Join(g.Reader.Close(), g.f.Close())
}

type filterFunc func(f io.ReadCloser) (io.ReadCloser, error)

var fileTypes = map[string]filterFunc{
	".gz": func(f io.ReadCloser) (io.ReadCloser, error) {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		return &gzipReader{Reader: gr, f: f}, nil
	},
	".xz": func(f io.ReadCloser) (io.ReadCloser, error) {
		return filterByCommand(f, []string{"xz", "-cd", "-T", "0"})
	},
	".zst": func(f io.ReadCloser) (io.ReadCloser, error) {
		return filterByCommand(f, []string{"zstd", "-cd", "-T0"})
	},
}

// OpenFile opens filename for reading, decompressing it when the extension
// is one of .gz, .xz or .zst. A missing file gives an error matching
// fs.ErrNotExist.
func OpenFile(filename string) (io.ReadCloser, error) {
	return OpenFileAs(filename, filepath.Ext(filename))
}

// OpenFileAs is OpenFile with the compression given explicitly as an
// extension (".gz"). An empty or unknown compression reads the file as is.
func OpenFileAs(filename, compression string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	filter, ok := fileTypes[compression]
	if !ok {
		return f, nil
	}
	r, err := filter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s as %s: %w", filename, compression, err)
	}
	return r, nil
}

// IsCompressed reports whether OpenFile would decompress filename.
func IsCompressed(filename string) bool {
	_, ok := fileTypes[filepath.Ext(filename)]
	return ok
}
