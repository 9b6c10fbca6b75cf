package analyze

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

type OutputContext struct {
	Result  *Result
	Stats   []DomainStats
	NoColor bool
}

func NewOutputContext(r *Result, sortBy SortByFlag, noColor bool) *OutputContext {
	return &OutputContext{
		Result:  r,
		Stats:   r.Table.Group(r.Domains, GetSortFunc(sortBy)),
		NoColor: noColor,
	}
}

type Outputter interface {
	Print(w io.Writer, ctx *OutputContext) error
}

type OutputterFunc func(w io.Writer, ctx *OutputContext) error

func (f OutputterFunc) Print(w io.Writer, ctx *OutputContext) error {
	return f(w, ctx)
}

type FormatFlag string

const (
	FormatText  FormatFlag = "text"
	FormatTable FormatFlag = "table"
	FormatJSON  FormatFlag = "json"
)

var outputters = map[FormatFlag]Outputter{
	FormatText:  OutputterFunc(PrintText),
	FormatTable: OutputterFunc(PrintTable),
	FormatJSON:  OutputterFunc(PrintJSON),
}

func (f FormatFlag) String() string {
	return string(f)
}

func (f *FormatFlag) Set(value string) error {
	if _, ok := outputters[FormatFlag(value)]; !ok {
		return fmt.Errorf("must be one of %s", strings.Join(ListFormats(), ", "))
	}
	*f = FormatFlag(value)
	return nil
}

func (f FormatFlag) Type() string {
	return "string"
}

func ListFormats() []string {
	ret := make([]string, 0, len(outputters))
	for k := range outputters {
		ret = append(ret, string(k))
	}
	slices.Sort(ret)
	return ret
}

func GetOutputter(f FormatFlag) (Outputter, error) {
	o, ok := outputters[f]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", f)
	}
	return o, nil
}

// PrintText writes the classic report:
//
//	Domain: example.com
//	  Hour: 2024-03-15 09:00
//	    IP: 192.0.2.1 - 5 requests
func PrintText(w io.Writer, ctx *OutputContext) error {
	bold := color.New(color.Bold)
	if ctx.NoColor {
		bold.DisableColor()
	}
	if _, err := fmt.Fprintf(w, "Hourly request count per domain within %s:\n", ctx.Result.Window); err != nil {
		return err
	}
	for _, ds := range ctx.Stats {
		if _, err := bold.Fprintf(w, "\nDomain: %s", ds.Domain); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		for _, hs := range ds.Hours {
			if _, err := fmt.Fprintf(w, "  Hour: %s\n", hs.Hour); err != nil {
				return err
			}
			for _, ip := range hs.IPs {
				if _, err := fmt.Fprintf(w, "    IP: %s - %d requests\n", ip.IP, ip.Count); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func PrintTable(w io.Writer, ctx *OutputContext) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoWrap(tw.WrapNone),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithPadding(tw.Padding{
			Right:     "  ",
			Overwrite: true,
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
	)
	table.Header("Domain", "Hour", "IP", "Requests")
	for _, ds := range ctx.Stats {
		for _, hs := range ds.Hours {
			for _, ip := range hs.IPs {
				row := []string{ds.Domain, hs.Hour, ip.IP, strconv.FormatUint(ip.Count, 10)}
				if err := table.Append(row); err != nil {
					return err
				}
			}
		}
	}
	return table.Render()
}

type jsonReport struct {
	Window  string        `json:"window"`
	Domains []DomainStats `json:"domains"`
	Summary Summary       `json:"summary"`
}

func PrintJSON(w io.Writer, ctx *OutputContext) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Window:  ctx.Result.Window.String(),
		Domains: ctx.Stats,
		Summary: ctx.Result.Summary,
	})
}
