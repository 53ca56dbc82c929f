package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/greenscreen/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// ReportMarkdown summarises a run result as markdown.
func ReportMarkdown(res *domain.Result) string {
	var b strings.Builder
	status := "✅ succeeded"
	if !res.Success {
		status = "❌ failed"
	}
	fmt.Fprintf(&b, "# %s %s\n\n", res.Workflow, status)
	fmt.Fprintf(&b, "- **Run:** `%s`\n", res.RunID)
	fmt.Fprintf(&b, "- **Code:** `%s`\n", res.Code)
	fmt.Fprintf(&b, "- **Duration:** %s\n", res.Duration().Round(time.Millisecond))
	if !res.Success {
		fmt.Fprintf(&b, "- **Failed step:** `%s`\n", res.FailedStep)
		fmt.Fprintf(&b, "- **Reason:** %s\n", res.Message)
	}

	if len(res.Data) > 0 {
		b.WriteString("\n## Data\n\n| field | value |\n|---|---|\n")
		keys := make([]string, 0, len(res.Data))
		for k := range res.Data {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", k, cell(res.Data[k]))
		}
	}

	if len(res.Log) > 0 {
		b.WriteString("\n## Log\n\n")
		for _, e := range res.Log {
			if e.Severity == domain.SeverityDebug {
				fmt.Fprintf(&b, "```\n%s\n```\n", e.Message)
				continue
			}
			step := ""
			if e.Step != "" {
				step = " `" + e.Step + "`"
			}
			fmt.Fprintf(&b, "- %s **%s**%s %s\n", e.Timestamp.Format("15:04:05.000"), e.Severity, step, e.Message)
		}
	}
	return b.String()
}

// PrintReport writes the report, styled when render is non-nil.
func PrintReport(w io.Writer, res *domain.Result, render func(string) (string, error)) error {
	md := ReportMarkdown(res)
	if render != nil {
		out, err := render(md)
		if err == nil {
			md = out
		}
	}
	_, err := io.WriteString(w, md)
	return err
}

func cell(s string) string {
	if s == "" {
		return " "
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
