package formatter

import (
	"io"

	"github.com/bytedance/sonic"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(w io.Writer, report Report) error {
	data, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// New returns the formatter for an output name.
func New(output string) (Formatter, bool) {
	switch output {
	case "table", "":
		return NewTableFormatter(), true
	case "json":
		return NewJSONFormatter(), true
	}
	return nil, false
}
