package parser

import (
	"regexp"
	"strconv"
)

func init() {
	newFunc := func() (Parser, error) {
		return ParserFunc(ParseCombined), nil
	}
	RegisterParser(ParserMeta{
		Name:        "combined",
		Description: "Apache/Nginx combined log format (default)",
		F:           newFunc,
	})
	RegisterParser(ParserMeta{
		Name:        "nginx-combined",
		Description: "An alias for `combined`",
		Hidden:      true,
		F:           newFunc,
	})
}

// IP, ident, user, [time], "request", status, size, "referer", "user agent".
// Trailing fields (e.g. vhost or timing added by some servers) are ignored.
var combinedRegex = regexp.MustCompile(`^(\S+) \S+ \S+ \[([^\]]+)\] "([^"]+)" (\d{3}) (\S+) "([^"]+)" "([^"]+)"`)

func ParseCombined(line []byte) (Record, error) {
	m := combinedRegex.FindSubmatch(line)
	if m == nil {
		return Record{}, ErrNoMatch
	}
	// \d{3} cannot fail to convert
	status, _ := strconv.Atoi(string(m[4]))
	return Record{
		Client:    string(m[1]),
		Timestamp: string(m[2]),
		Request:   string(m[3]),
		Status:    status,
		Size:      string(m[5]),
		Referer:   string(m[6]),
		UserAgent: string(m[7]),
	}, nil
}
