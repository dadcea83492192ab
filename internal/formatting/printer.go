// Package formatting renders item results for the command line as JSON,
// YAML or a table.
package formatting

import (
	"fmt"
	"io"
	"strings"

	"mcpnode/internal/api"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatTable OutputFormat = "table"
)

// ParseFormat validates an output format name. Empty selects JSON.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatTable:
		return FormatTable, nil
	default:
		return "", api.NewConfigurationError("output", "unsupported output format %q (supported: json, yaml, table)", s)
	}
}

// Options configures the printer.
type Options struct {
	Format OutputFormat
	// Quiet selects compact JSON and plain table styling
	Quiet bool
}

// Printer writes item results in one format.
type Printer struct {
	out     io.Writer
	options Options
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, options Options) *Printer {
	return &Printer{out: out, options: options}
}

// Print renders the results of one run of op.
func (p *Printer) Print(op api.Operation, results []api.ItemResult) error {
	if results == nil {
		results = []api.ItemResult{}
	}

	switch p.options.Format {
	case FormatYAML:
		data, err := yaml.Marshal(results)
		if err != nil {
			return fmt.Errorf("failed to format YAML: %w", err)
		}
		_, err = p.out.Write(data)
		return err
	case FormatTable:
		return p.printTable(op, results)
	default:
		s := PrettyJSON(results)
		if p.options.Quiet {
			s = CompactJSON(results)
		}
		_, err := fmt.Fprintln(p.out, s)
		return err
	}
}

func (p *Printer) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	if p.options.Quiet {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleRounded)
	}
	return t
}

func (p *Printer) header(cols ...string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		if p.options.Quiet {
			row[i] = c
		} else {
			row[i] = text.FgHiCyan.Sprint(c)
		}
	}
	return row
}

func (p *Printer) printTable(op api.Operation, results []api.ItemResult) error {
	t := p.createTable()

	switch op {
	case api.OperationListTools:
		t.AppendHeader(p.header("ITEM", "NAME", "DESCRIPTION", "REQUIRED"))
		p.appendRows(t, results, "tools", func(item int, entry map[string]any) table.Row {
			schema, _ := entry["schema"].(map[string]any)
			return table.Row{item, str(entry["name"]), Truncate(str(entry["description"]), DescriptionMaxLen), joinList(schema["required"])}
		})
	case api.OperationListResources:
		t.AppendHeader(p.header("ITEM", "URI", "NAME", "MIME TYPE"))
		p.appendRows(t, results, "resources", func(item int, entry map[string]any) table.Row {
			return table.Row{item, str(entry["uri"]), str(entry["name"]), str(entry["mimeType"])}
		})
	case api.OperationListResourceTemplates:
		t.AppendHeader(p.header("ITEM", "URI TEMPLATE", "NAME", "MIME TYPE"))
		p.appendRows(t, results, "resourceTemplates", func(item int, entry map[string]any) table.Row {
			return table.Row{item, str(entry["uriTemplate"]), str(entry["name"]), str(entry["mimeType"])}
		})
	case api.OperationListPrompts:
		t.AppendHeader(p.header("ITEM", "NAME", "DESCRIPTION", "ARGUMENTS"))
		p.appendRows(t, results, "prompts", func(item int, entry map[string]any) table.Row {
			return table.Row{item, str(entry["name"]), Truncate(str(entry["description"]), DescriptionMaxLen), argumentNames(entry["arguments"])}
		})
	default:
		t.AppendHeader(p.header("ITEM", "STATUS", "RESULT"))
		for _, r := range results {
			if r.Failed() {
				t.AppendRow(table.Row{r.SourceItemIndex(), p.failed(), r.Error})
				continue
			}
			t.AppendRow(table.Row{r.SourceItemIndex(), "ok", Truncate(CompactJSON(r.Payload), 100)})
		}
	}

	t.Render()
	return nil
}

// appendRows adds one row per listed entry, or an error row per failed item.
func (p *Printer) appendRows(t table.Writer, results []api.ItemResult, key string, row func(item int, entry map[string]any) table.Row) {
	for _, r := range results {
		if r.Failed() {
			t.AppendRow(table.Row{r.SourceItemIndex(), p.failed(), r.Error})
			continue
		}
		for _, entry := range entries(r.Payload[key]) {
			t.AppendRow(row(r.SourceItemIndex(), entry))
		}
	}
}

func (p *Printer) failed() string {
	if p.options.Quiet {
		return "error"
	}
	return text.FgRed.Sprint("error")
}

func entries(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, e := range list {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func joinList(v any) string {
	list, _ := v.([]any)
	parts := make([]string, 0, len(list))
	for _, e := range list {
		parts = append(parts, str(e))
	}
	return strings.Join(parts, ", ")
}

func argumentNames(v any) string {
	var names []string
	for _, arg := range entries(v) {
		name := str(arg["name"])
		if required, _ := arg["required"].(bool); required {
			name += "*"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
