package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/noreturn/internal"
	"github.com/gnolang/noreturn/internal/eval"
)

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
	noStyle         = color.New(color.FgWhite)
)

const padding = "  "

const rewriteTemplate = `{{header .Component .Binding .Filename .ReturnType}}
{{line}}
{{code "before" .Before}}{{code "after" .After}}{{line}}
{{temporaries .Temporaries}}{{verdict .Verification .Reason .Detail}}{{problems .Problems}}
`

var rewriteTmpl = template.Must(template.New("rewrite").Funcs(template.FuncMap{
	"header":      header,
	"line":        func() string { return lineStyle.Sprintf("%s|", padding) },
	"code":        code,
	"temporaries": temporaries,
	"verdict":     verdict,
	"problems":    problems,
}).Parse(rewriteTemplate))

type rewriteData struct {
	internal.Rewrite
	Filename string
}

// GenerateFormattedReport renders every rewrite of report followed by a
// summary line.
func GenerateFormattedReport(report *internal.Report) string {
	var builder strings.Builder
	for _, rw := range report.Rewrites {
		builder.WriteString(FormatRewrite(rw, report.Filename))
	}
	builder.WriteString(Summary(report))
	builder.WriteString("\n")
	return builder.String()
}

// Summary returns a one-line description of report.
func Summary(report *internal.Report) string {
	name := report.Filename
	if name == "" {
		name = report.Document
	}
	s := fileStyle.Sprint(name) + noStyle.Sprintf(": %d of %d bindings rewritten, %d temporaries",
		len(report.Rewrites), report.Bindings, report.Temporaries())
	if report.Failed() {
		s += errorStyle.Sprint(" (failed)")
	}
	return s
}

// FormatRewrite renders a single rewrite. filename may be empty.
func FormatRewrite(rw internal.Rewrite, filename string) string {
	var buf bytes.Buffer
	if err := rewriteTmpl.Execute(&buf, rewriteData{Rewrite: rw, Filename: filename}); err != nil {
		return fmt.Sprintf("Error formatting rewrite: %v", err)
	}
	return buf.String()
}

// utils functions used in the text template

func header(component, binding, filename, returnType string) string {
	s := ruleStyle.Sprint("rewrite: ") + ruleStyle.Sprintf("%s.%s\n", component, binding)
	s += lineStyle.Sprintf("%s--> ", padding[1:])
	if filename != "" {
		s += fileStyle.Sprint(filename) + " "
	}
	s += noStyle.Sprintf("(returns %s)", returnType)
	return s
}

func code(label, text string) string {
	if text == "" {
		return ""
	}
	return lineStyle.Sprintf("%s| ", padding) + noStyle.Sprintf("%-8s", label+":") + text + "\n"
}

func temporaries(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return lineStyle.Sprintf("%s= ", padding) + noStyle.Sprintf("temporaries: %s\n", strings.Join(names, ", "))
}

func verdict(result, reason, detail string) string {
	if result == "" {
		return ""
	}
	s := lineStyle.Sprintf("%s= ", padding)
	switch result {
	case eval.Equivalent.String():
		s += suggestionStyle.Sprint("verified: ")
	case eval.NotEquivalent.String():
		s += errorStyle.Sprint("error: ")
	default:
		s += warningStyle.Sprint("warning: ")
	}
	s += noStyle.Sprintf("%s (%s)", result, reason)
	if detail != "" {
		s += messageStyle.Sprintf(": %s", detail)
	}
	return s + "\n"
}

func problems(list []string) string {
	var s string
	for _, p := range list {
		s += lineStyle.Sprintf("%s= ", padding) + errorStyle.Sprint("invalid: ") + messageStyle.Sprintln(p)
	}
	return s
}
