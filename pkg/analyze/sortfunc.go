package analyze

import (
	"cmp"
	"errors"
	"net/netip"
	"slices"
	"strings"
)

type SortByFlag string

const (
	SortByCount SortByFlag = "count"
	SortByIP    SortByFlag = "ip"
)

func (s SortByFlag) String() string {
	return string(s)
}

func (s *SortByFlag) Set(value string) error {
	switch value {
	case "count", "requests", "reqs":
		*s = SortByCount
	case "ip":
		*s = SortByIP
	default:
		return errors.New(`must be one of "count" or "ip"`)
	}
	return nil
}

func (s SortByFlag) Type() string {
	return "string"
}

type SortFunc func(l, r IPCount) int

var sortFuncs = map[SortByFlag]SortFunc{
	// Busiest first, ties by address so output is stable
	SortByCount: func(l, r IPCount) int {
		if c := cmp.Compare(r.Count, l.Count); c != 0 {
			return c
		}
		return strings.Compare(l.IP, r.IP)
	},
	SortByIP: compareIP,
}

// compareIP orders parseable addresses numerically (IPv4 before IPv6) and
// anything else after them as plain strings.
func compareIP(l, r IPCount) int {
	la, lerr := netip.ParseAddr(l.IP)
	ra, rerr := netip.ParseAddr(r.IP)
	switch {
	case lerr == nil && rerr == nil:
		return la.Compare(ra)
	case lerr == nil:
		return -1
	case rerr == nil:
		return 1
	}
	return strings.Compare(l.IP, r.IP)
}

func GetSortFunc(name SortByFlag) SortFunc {
	fn, ok := sortFuncs[name]
	if !ok {
		return nil
	}
	return fn
}

func ListSortFuncs() []SortByFlag {
	ret := make([]SortByFlag, 0, len(sortFuncs))
	for key := range sortFuncs {
		ret = append(ret, key)
	}
	slices.Sort(ret)
	return ret
}
