package parser

import (
	"fmt"
	"os"
	"strconv"

	"github.com/taoky/goaccessfmt/pkg/goaccessfmt"
)

const GoAccessConfigEnv = "GOACCESS_CONFIG"

func init() {
	RegisterParser(ParserMeta{
		Name:        "goaccess",
		Description: "Any format described by a GoAccess config file (set " + GoAccessConfigEnv + ")",
		F: func() (Parser, error) {
			return NewGoAccessParser(os.Getenv(GoAccessConfigEnv))
		},
	})
}

type GoAccessFormatParser struct {
	conf goaccessfmt.Config
}

func NewGoAccessParser(confFile string) (GoAccessFormatParser, error) {
	var p GoAccessFormatParser
	if confFile == "" {
		return p, fmt.Errorf("goaccess parser requires %s", GoAccessConfigEnv)
	}
	file, err := os.Open(confFile)
	if err != nil {
		return p, err
	}
	defer file.Close()
	conf, err := goaccessfmt.ParseConfigReader(file)
	if err != nil {
		return p, fmt.Errorf("parse goaccess config %s: %w", confFile, err)
	}
	p.conf = conf
	return p, nil
}

// Parse converts a goaccess item back to a Record. The parsed time is
// rendered in CLF again so that it goes through NormalizeTime like any
// other record.
func (p GoAccessFormatParser) Parse(line []byte) (Record, error) {
	item, err := goaccessfmt.ParseLine(p.conf, string(line))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrNoMatch, err)
	}
	return Record{
		Client:    item.Host,
		Timestamp: item.Dt.Format(CommonLogFormat),
		Request:   item.Req,
		Size:      strconv.FormatUint(item.RespSize, 10),
	}, nil
}
