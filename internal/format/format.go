// Package format renders backend values for the dashboard templates.
package format

import (
	"bytes"
	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"html/template"
	"strconv"
	"strings"
	"time"
)

var printer = message.NewPrinter(language.English)

// IRR formats a rial amount with thousands grouping, e.g. 1250000 -> "1,250,000".
func IRR(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// USDT formats an amount with exactly two decimals.
func USDT(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// GB prints a data limit, dropping a zero fractional part. Zero is unlimited.
func GB(v float64) string {
	if v == 0 {
		return "Unlimited"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " GB"
}

func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// Ago renders t relative to now ("3 minutes ago").
func Ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func Count(v int64) string {
	return humanize.Comma(v)
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Markdown renders a broadcast draft for preview. Raw HTML in the draft is
// not passed through.
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// Funcs is the template function map used by the web package.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"irr":      IRR,
		"usdt":     USDT,
		"gb":       GB,
		"date":     Date,
		"ago":      Ago,
		"count":    Count,
		"markdown": Markdown,
		"upper":    strings.ToUpper,
	}
}
