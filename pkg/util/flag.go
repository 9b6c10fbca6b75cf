package util

import (
	"github.com/taoky/hourlog/pkg/window"
)

// DateRangeFlag is a pflag.Value for window.Window. The zero value means
// "not given".
type DateRangeFlag window.Window

func (d DateRangeFlag) String() string {
	return window.Window(d).String()
}

func (d *DateRangeFlag) Set(value string) error {
	if value == "" {
		*d = DateRangeFlag{}
		return nil
	}
	w, err := window.Parse(value)
	if err != nil {
		return err
	}
	*d = DateRangeFlag(w)
	return nil
}

func (d DateRangeFlag) Type() string {
	return "daterange"
}

func (d DateRangeFlag) Window() window.Window {
	return window.Window(d)
}

// MarshalYAML and UnmarshalYAML let a config file carry the same text as
// the flag.
func (d DateRangeFlag) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *DateRangeFlag) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.Set(s)
}
