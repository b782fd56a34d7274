package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
</style>
</head>
<body>
%s</body>
</html>
`

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
}

// MarkdownToHTML converts markdown into a standalone HTML page
func MarkdownToHTML(markdown, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := newMarkdown().Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return []byte(fmt.Sprintf(htmlShell, html.EscapeString(title), body.String())), nil
}
