package analyze

import (
	"maps"
	"slices"
)

type StatKey struct {
	Domain string
	Hour   string
	IP     string
}

// Table counts requests per (domain, hour, ip). A key is present only with
// a count of at least one. Table is not safe for concurrent use.
type Table struct {
	counts map[StatKey]uint64
}

func NewTable() *Table {
	return &Table{counts: make(map[StatKey]uint64)}
}

func (t *Table) Add(key StatKey, n uint64) {
	if n == 0 {
		return
	}
	t.counts[key] += n
}

func (t *Table) Inc(key StatKey) {
	t.counts[key]++
}

func (t *Table) Get(key StatKey) uint64 {
	return t.counts[key]
}

// Merge adds every count of other into t. other is left untouched.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for k, v := range other.counts {
		t.Add(k, v)
	}
}

func (t *Table) Len() int {
	return len(t.counts)
}

func (t *Table) Total() uint64 {
	var total uint64
	for _, v := range t.counts {
		total += v
	}
	return total
}

// Domains returns the sorted domains having at least one count.
func (t *Table) Domains() []string {
	seen := make(map[string]struct{})
	for k := range t.counts {
		seen[k.Domain] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

type IPCount struct {
	IP    string `json:"ip"`
	Count uint64 `json:"count"`
}

type HourStats struct {
	Hour string    `json:"hour"`
	IPs  []IPCount `json:"ips"`
}

type DomainStats struct {
	Domain   string      `json:"domain"`
	Requests uint64      `json:"requests"`
	Hours    []HourStats `json:"hours"`
}

// Group arranges the counts of each domain in order: domains as given
// (domains without data are dropped), hours ascending, IPs by sortFunc.
func (t *Table) Group(domains []string, sortFunc SortFunc) []DomainStats {
	byDomain := make(map[string]map[string][]IPCount)
	for k, v := range t.counts {
		hours, ok := byDomain[k.Domain]
		if !ok {
			hours = make(map[string][]IPCount)
			byDomain[k.Domain] = hours
		}
		hours[k.Hour] = append(hours[k.Hour], IPCount{IP: k.IP, Count: v})
	}

	ret := make([]DomainStats, 0, len(domains))
	for _, domain := range domains {
		hours, ok := byDomain[domain]
		if !ok {
			continue
		}
		// a domain listed twice is only shown once
		delete(byDomain, domain)
		ds := DomainStats{Domain: domain}
		for _, hour := range slices.Sorted(maps.Keys(hours)) {
			ips := hours[hour]
			if sortFunc != nil {
				slices.SortFunc(ips, sortFunc)
			}
			for _, ip := range ips {
				ds.Requests += ip.Count
			}
			ds.Hours = append(ds.Hours, HourStats{Hour: hour, IPs: ips})
		}
		ret = append(ret, ds)
	}
	return ret
}
