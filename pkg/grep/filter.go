package grep

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/spf13/pflag"
	"github.com/taoky/hourlog/pkg/parser"
	"github.com/taoky/hourlog/pkg/util"
)

type Filter struct {
	Prefixes        []netip.Prefix
	RequestContains []string
	DateRange       util.DateRangeFlag
}

func (f *Filter) InstallFlags(flags *pflag.FlagSet) {
	flags.Func("ip", "IP or CIDR range (can be specified multiple times)",
		func(value string) error {
			p, err := parsePrefix(value)
			if err != nil {
				return err
			}
			f.Prefixes = append(f.Prefixes, p)
			return nil
		})
	flags.StringArrayVar(&f.RequestContains, "request-contains", f.RequestContains, "Request line substring to filter (can be specified multiple times)")
	flags.VarP(&f.DateRange, "daterange", "r", "Only lines within dd/mm/yyyy-dd/mm/yyyy, both ends included")
}

// parsePrefix accepts a bare address as a single-host prefix.
func parsePrefix(value string) (netip.Prefix, error) {
	if !strings.Contains(value, "/") {
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return netip.Prefix{}, err
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	return netip.ParsePrefix(value)
}

func (f *Filter) IsEmpty() bool {
	return len(f.Prefixes) == 0 && len(f.RequestContains) == 0 && f.DateRange.Window().IsZero()
}

var (
	ErrInvalidIP        = errors.New("invalid client IP")
	ErrNoPrefixMatch    = errors.New("no matching prefix")
	ErrRequestNoMatch   = errors.New("request does not match")
	ErrOutsideDateRange = errors.New("outside date range")
)

func (f *Filter) Match(record parser.Record) error {
	if len(f.Prefixes) > 0 {
		ip, err := netip.ParseAddr(record.Client)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIP, err)
		}
		prefixMatch := false
		for _, prefix := range f.Prefixes {
			if prefix.Contains(ip.Unmap()) {
				prefixMatch = true
				break
			}
		}
		if !prefixMatch {
			return ErrNoPrefixMatch
		}
	}
	if len(f.RequestContains) > 0 {
		requestMatch := false
		for _, substr := range f.RequestContains {
			if strings.Contains(record.Request, substr) {
				requestMatch = true
				break
			}
		}
		if !requestMatch {
			return ErrRequestNoMatch
		}
	}
	if win := f.DateRange.Window(); !win.IsZero() {
		t, err := parser.NormalizeTime(record.Timestamp)
		if err != nil {
			return err
		}
		if !win.ContainsTime(t) {
			return ErrOutsideDateRange
		}
	}
	return nil
}
