// Package texgen renders a validated homework document into a compilable
// LaTeX source file. The template uses "((" and "))" delimiters so template
// actions never collide with LaTeX braces.
package texgen

import (
	"strings"
	"text/template"
	"time"

	"homework-transcriber/internal/document"
	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

const texTemplate = `\documentclass{article}
\usepackage[margin=1in]{geometry}
\usepackage{amsmath, amssymb, amsthm}
\usepackage{indentfirst}

% Custom Commands
\newcommand{\N}{\mathbb{N}}

% Metadata
\title{(( .Title ))}
\author{(( .Author ))}
\date{(( .Date ))}

\begin{document}
\maketitle
(( range .Problems ))
\section*{Problem (( .Number ))}
(( if .Content ))
(( .Content ))
(( end ))(( range .Parts ))
\subsection*{(( .Label )))}
(( if .Content ))
(( .Content ))
(( end ))(( range .SubParts ))
\subsubsection*{(( .Label )))}
(( if .Content ))
(( .Content ))
(( end ))(( end ))(( end ))(( end ))
\end{document}
`

// view models fed to the template; content strings are fully rendered LaTeX.
type texDocument struct {
	Title    string
	Author   string
	Date     string
	Problems []texProblem
}

type texProblem struct {
	Number  int
	Content string
	Parts   []texPart
}

type texPart struct {
	Label    string
	Content  string
	SubParts []texSubPart
}

type texSubPart struct {
	Label   string
	Content string
}

// Generator renders documents through the parsed LaTeX template.
type Generator struct {
	tmpl *template.Template
}

// NewGenerator parses the LaTeX template and returns a Generator.
func NewGenerator() (*Generator, error) {
	tmpl, err := template.New("homework").Delims("((", "))").Parse(texTemplate)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to parse LaTeX template", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Generate renders the document into LaTeX source. Title and author fall back
// to placeholders when the config leaves them empty.
func (g *Generator) Generate(doc *document.Document, cfg *types.Config) (string, error) {
	view := texDocument{
		Title:  "Math Homework",
		Author: "Student",
		Date:   time.Now().Format("01/02/2006"),
	}
	if cfg != nil {
		if cfg.DocumentTitle != "" {
			view.Title = cfg.DocumentTitle
		}
		if cfg.StudentName != "" {
			view.Author = cfg.StudentName
		}
	}

	for _, p := range doc.Problems {
		tp := texProblem{Number: p.Number, Content: g.renderBlocks(p.Blocks)}
		for _, part := range p.Parts {
			tpart := texPart{Label: part.Label, Content: g.renderBlocks(part.Blocks)}
			for _, sp := range part.SubParts {
				tpart.SubParts = append(tpart.SubParts, texSubPart{
					Label:   sp.Label,
					Content: g.renderBlocks(sp.Blocks),
				})
			}
			tp.Parts = append(tp.Parts, tpart)
		}
		view.Problems = append(view.Problems, tp)
	}

	var sb strings.Builder
	if err := g.tmpl.Execute(&sb, view); err != nil {
		logger.Error("LaTeX template execution failed", err)
		return "", types.NewAppError(types.ErrInternal, "failed to render LaTeX template", err)
	}

	logger.Debug("LaTeX source generated",
		logger.Int("problems", len(view.Problems)),
		logger.Int("bytes", sb.Len()))
	return sb.String(), nil
}

// renderBlocks joins block renderings with blank lines.
func (g *Generator) renderBlocks(blocks []document.Block) string {
	var parts []string
	for _, b := range blocks {
		parts = append(parts, g.renderBlock(b))
	}
	return strings.Join(parts, "\n\n")
}

// renderBlock produces the LaTeX for one content block. Quoted proof lines
// become an itemize environment with a ">" item label, keeping the hanging
// step-by-step layout of the handwritten source.
func (g *Generator) renderBlock(b document.Block) string {
	switch b.Kind {
	case document.KindProofBlock:
		lines := make([]string, 0, len(b.Lines)+2)
		lines = append(lines, `\begin{itemize}`)
		for _, l := range b.Lines {
			lines = append(lines, `\item[>] `+l)
		}
		lines = append(lines, `\end{itemize}`)
		return strings.Join(lines, "\n")
	case document.KindDisplayMath:
		return `\[ ` + b.Text + ` \]`
	default:
		return b.Text
	}
}
