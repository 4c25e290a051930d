package external

import (
	"context"
	"html/template"
	"io"
	"sort"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/optimizer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/symtab"
)

// Reporter consumes the optimizer's transformation log and the
// analyzer's symbol table to produce a human-readable summary. It runs
// only when the CLI is invoked with --visualize, since neither output
// affects compilation itself.
type Reporter interface {
	Report(ctx context.Context, res optimizer.Result, table *symtab.Table, html io.Writer, dot io.Writer) error
}

// HTMLDotReporter renders an HTML optimization summary via
// html/template and a Graphviz DOT file listing the program's routines,
// hand-emitted the same way codegen builds assembly text.
type HTMLDotReporter struct{}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><title>optimization report</title></head>
<body>
<h1>Optimization report</h1>
<p>{{.Count}} transformation(s) applied.</p>
<table border="1" cellpadding="4">
<tr><th>kind</th><th>description</th><th>before</th><th>after</th><th>line</th></tr>
{{range .Details}}<tr><td>{{.Kind}}</td><td>{{.Description}}</td><td><code>{{.Before}}</code></td><td><code>{{.After}}</code></td><td>{{.Line}}</td></tr>
{{end}}</table>
</body>
</html>
`))

func (HTMLDotReporter) Report(ctx context.Context, res optimizer.Result, table *symtab.Table, htmlOut io.Writer, dotOut io.Writer) error {
	sp := tlog.SpanFromContext(ctx)
	sp.Printw("generate report", "transformations", res.Count)

	if err := reportTmpl.Execute(htmlOut, res); err != nil {
		return errors.Wrap(err, "render html report")
	}

	dot := renderDOT(table)
	if _, err := dotOut.Write(dot); err != nil {
		return errors.Wrap(err, "write dot file")
	}

	return nil
}

// renderDOT draws one node per routine, labelled with its name and
// parameter count, in name order. It draws no edges: call sites are
// not walked, so the graph does not show which routine calls which.
func renderDOT(table *symtab.Table) []byte {
	routines := table.Routines()

	names := make([]string, 0, len(routines))
	for name := range routines {
		names = append(names, name)
	}

	sort.Strings(names)

	var b []byte

	b = append(b, "digraph routines {\n"...)

	for _, name := range names {
		r := routines[name]
		b = hfmt.Appendf(b, "\t%q [label=\"%s/%d\"];\n", name, name, len(r.Params))
	}

	b = append(b, "}\n"...)

	return b
}
