// Package preview renders formatted homework markdown into a standalone HTML
// page with the math converted to MathML, for a quick browser check before
// committing to a LaTeX compile.
package preview

import (
	"bytes"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"

	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%TITLE%</title>
<style>
body { max-width: 48em; margin: 2em auto; font-family: Georgia, serif; line-height: 1.5; }
blockquote { border-left: 3px solid #999; margin-left: 0; padding-left: 1em; color: #333; }
h1 { border-bottom: 1px solid #ccc; padding-bottom: 0.2em; }
math { font-size: 1.1em; }
</style>
</head>
<body>
%BODY%
</body>
</html>
`

// Render converts formatted homework markdown to a complete HTML document.
func Render(markdown, title string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			treeblood.MathML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		logger.Error("markdown to HTML conversion failed", err)
		return "", types.NewAppError(types.ErrInternal, "failed to render HTML preview", err)
	}

	if title == "" {
		title = "Homework Preview"
	}
	page := strings.Replace(pageTemplate, "%TITLE%", title, 1)
	page = strings.Replace(page, "%BODY%", buf.String(), 1)

	logger.Debug("HTML preview rendered",
		logger.Int("markdownBytes", len(markdown)),
		logger.Int("htmlBytes", len(page)))
	return page, nil
}
