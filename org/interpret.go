package org

import (
	"fmt"
	"strings"
)

// InterpretContext carries the handful of settings that affect how a node
// renders back to Org syntax (spec.md §5 "interpret... the round-trip
// contract parse . interpret . parse = parse"). It replaces the teacher's
// package-level orgWriter/orgWriterMutex singleton (org/document.go) with
// an explicit, allocation-per-call value, per the Design Notes' guidance
// against global state.
type InterpretContext struct {
	IndentUnit string
}

func defaultInterpretContext() *InterpretContext {
	return &InterpretContext{IndentUnit: "  "}
}

// Interpret renders nodes back to their Org source representation. Called
// by every concrete Node's String() method (spec.md §5).
func Interpret(ctx *InterpretContext, nodes ...Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		if n == nil {
			continue
		}
		interpretNode(ctx, n, &sb, 0)
	}
	return sb.String()
}

func interpretNode(ctx *InterpretContext, n Node, sb *strings.Builder, depth int) {
	switch v := n.(type) {
	case *DocumentNode:
		interpretChildren(ctx, v.contents, sb, depth)
	case *Headline:
		interpretHeadline(ctx, v, sb)
	case *Inlinetask:
		interpretInlinetask(ctx, v, sb)
	case *Section:
		interpretChildren(ctx, v.contents, sb, depth)
	case *Planning:
		interpretPlanning(ctx, v, sb)
	case *Clock:
		interpretClock(ctx, v, sb)
	case *Paragraph:
		interpretParagraph(ctx, v, sb)
	case *PlainList:
		interpretChildren(ctx, v.contents, sb, depth)
	case *Item:
		interpretItem(ctx, v, sb, depth)
	case *Drawer:
		fmt.Fprintf(sb, ":%s:\n", v.Name)
		interpretChildren(ctx, v.contents, sb, depth)
		sb.WriteString(":END:\n")
	case *PropertyDrawer:
		sb.WriteString(":PROPERTIES:\n")
		interpretChildren(ctx, v.contents, sb, depth)
		sb.WriteString(":END:\n")
	case *NodeProperty:
		fmt.Fprintf(sb, ":%s: %s\n", v.Name, v.Value)
	case *Table:
		interpretChildren(ctx, v.contents, sb, depth)
	case *TableRow:
		interpretTableRow(ctx, v, sb)
	case *CenterBlock:
		interpretGreaterBlock(ctx, "CENTER", v.Parameters, v.contents, sb)
	case *QuoteBlock:
		interpretGreaterBlock(ctx, "QUOTE", v.Parameters, v.contents, sb)
	case *SpecialBlock:
		interpretGreaterBlock(ctx, v.Name, v.Parameters, v.contents, sb)
	case *VerseBlock:
		fmt.Fprintf(sb, "#+BEGIN_VERSE %s\n", v.Parameters)
		interpretChildren(ctx, v.contents, sb, depth)
		sb.WriteString("#+END_VERSE\n")
	case *DynamicBlock:
		fmt.Fprintf(sb, "#+BEGIN: %s %s\n", v.Name, v.Parameters)
		interpretChildren(ctx, v.contents, sb, depth)
		sb.WriteString("#+END:\n")
	case *CommentBlock:
		fmt.Fprintf(sb, "#+BEGIN_COMMENT %s\n%s\n#+END_COMMENT\n", v.Parameters, v.Value)
	case *ExampleBlock:
		fmt.Fprintf(sb, "#+BEGIN_EXAMPLE %s\n%s\n#+END_EXAMPLE\n", v.Parameters, v.Value)
	case *ExportBlock:
		fmt.Fprintf(sb, "#+BEGIN_EXPORT %s\n%s\n#+END_EXPORT\n", v.Backend, v.Value)
	case *SrcBlock:
		fmt.Fprintf(sb, "#+BEGIN_SRC %s %s\n%s\n#+END_SRC\n", v.Language, v.Parameters, v.Value)
	case *LatexEnvironment:
		sb.WriteString(v.Value)
		sb.WriteString("\n")
	case *Keyword:
		fmt.Fprintf(sb, "#+%s: %s\n", v.Key, v.Value)
	case *BabelCall:
		fmt.Fprintf(sb, "#+CALL: %s\n", v.Value)
	case *Comment:
		for _, line := range strings.Split(v.Value, "\n") {
			fmt.Fprintf(sb, "# %s\n", line)
		}
	case *FixedWidth:
		for _, line := range strings.Split(v.Value, "\n") {
			fmt.Fprintf(sb, ": %s\n", line)
		}
	case *HorizontalRule:
		sb.WriteString("-----\n")
	case *DiarySexp:
		sb.WriteString(v.Value)
		sb.WriteString("\n")
	case *FootnoteDefinition:
		fmt.Fprintf(sb, "[fn:%s] ", v.Name)
		interpretChildren(ctx, v.contents, sb, depth)
	case *PlainText:
		sb.WriteString(v.Value)
	case *LineBreak:
		sb.WriteString(strings.Repeat("\n", v.Count))
	case *Bold:
		interpretMarkup(ctx, "*", v.contents, sb)
	case *Italic:
		interpretMarkup(ctx, "/", v.contents, sb)
	case *Underline:
		interpretMarkup(ctx, "_", v.contents, sb)
	case *StrikeThrough:
		interpretMarkup(ctx, "+", v.contents, sb)
	case *Verbatim:
		fmt.Fprintf(sb, "=%s=", v.Value)
	case *Code:
		fmt.Fprintf(sb, "~%s~", v.Value)
	case *StatisticsCookie:
		fmt.Fprintf(sb, "[%s]", v.Value)
	case *Timestamp:
		sb.WriteString(interpretTimestamp(v))
	case *LatexFragment:
		sb.WriteString(v.OpeningPair)
		interpretChildren(ctx, v.contents, sb, depth)
		sb.WriteString(v.ClosingPair)
	case *FootnoteReference:
		if v.Definition != nil {
			fmt.Fprintf(sb, "[fn:%s:", v.Name)
			interpretChildren(ctx, v.Definition.contents, sb, depth)
			sb.WriteString("]")
		} else {
			fmt.Fprintf(sb, "[fn:%s]", v.Name)
		}
	case *Link:
		interpretLink(ctx, v, sb)
	case *Macro:
		fmt.Fprintf(sb, "{{{%s(%s)}}}", v.Name, strings.Join(v.Parameters, ","))
	case *InlineSrcBlock:
		params := ""
		if v.Parameters != "" {
			params = "[" + v.Parameters + "]"
		}
		fmt.Fprintf(sb, "src_%s%s{%s}", v.Language, params, v.Value)
	case *InlineBabelCall:
		fmt.Fprintf(sb, "call_%s(%s)", v.Name, v.Value)
	case *ExportSnippet:
		fmt.Fprintf(sb, "@@%s:%s@@", v.Backend, v.Value)
	case *Target:
		fmt.Fprintf(sb, "<<%s>>", v.Value)
	case *RadioTarget:
		sb.WriteString("<<<")
		interpretChildren(ctx, v.contents, sb, depth)
		sb.WriteString(">>>")
	case *Entity:
		fmt.Fprintf(sb, "\\%s", v.Name)
	case *Subscript:
		sb.WriteString("_{")
		interpretChildren(ctx, v.contents, sb, depth)
		sb.WriteString("}")
	case *Superscript:
		sb.WriteString("^{")
		interpretChildren(ctx, v.contents, sb, depth)
		sb.WriteString("}")
	case *TableCell:
		interpretChildren(ctx, v.contents, sb, depth)
	default:
		// unknown kind: render nothing rather than guess at syntax.
	}
}

func interpretChildren(ctx *InterpretContext, children []Node, sb *strings.Builder, depth int) {
	for _, c := range children {
		interpretNode(ctx, c, sb, depth)
	}
}

func interpretMarkup(ctx *InterpretContext, marker string, children []Node, sb *strings.Builder) {
	sb.WriteString(marker)
	interpretChildren(ctx, children, sb, 0)
	sb.WriteString(marker)
}

func interpretHeadline(ctx *InterpretContext, h *Headline, sb *strings.Builder) {
	sb.WriteString(strings.Repeat("*", h.Level))
	if h.TodoKeyword != "" {
		fmt.Fprintf(sb, " %s", h.TodoKeyword)
	}
	if h.Priority != 0 {
		fmt.Fprintf(sb, " [#%c]", h.Priority)
	}
	sb.WriteString(" ")
	interpretChildren(ctx, h.Title, sb, 0)
	if len(h.Tags) > 0 {
		fmt.Fprintf(sb, " :%s:", strings.Join(h.Tags, ":"))
	}
	sb.WriteString("\n")
	interpretChildren(ctx, h.contents, sb, 0)
}

func interpretInlinetask(ctx *InterpretContext, it *Inlinetask, sb *strings.Builder) {
	stars := strings.Repeat("*", it.Level)
	sb.WriteString(stars)
	if it.TodoKeyword != "" {
		fmt.Fprintf(sb, " %s", it.TodoKeyword)
	}
	if it.Priority != 0 {
		fmt.Fprintf(sb, " [#%c]", it.Priority)
	}
	sb.WriteString(" ")
	interpretChildren(ctx, it.Title, sb, 0)
	if len(it.Tags) > 0 {
		fmt.Fprintf(sb, " :%s:", strings.Join(it.Tags, ":"))
	}
	sb.WriteString("\n")
	interpretChildren(ctx, it.contents, sb, 0)
	sb.WriteString(stars + " END\n")
}

func interpretPlanning(ctx *InterpretContext, p *Planning, sb *strings.Builder) {
	var parts []string
	if p.Scheduled != nil {
		parts = append(parts, "SCHEDULED: "+interpretTimestamp(p.Scheduled))
	}
	if p.Deadline != nil {
		parts = append(parts, "DEADLINE: "+interpretTimestamp(p.Deadline))
	}
	if p.Closed != nil {
		parts = append(parts, "CLOSED: "+interpretTimestamp(p.Closed))
	}
	sb.WriteString(strings.Join(parts, " "))
	sb.WriteString("\n")
}

func interpretClock(ctx *InterpretContext, c *Clock, sb *strings.Builder) {
	sb.WriteString("CLOCK: ")
	if c.Start != nil {
		sb.WriteString(interpretTimestamp(c.Start))
	}
	if c.Stop != nil {
		sb.WriteString("--")
		sb.WriteString(interpretTimestamp(c.Stop))
	}
	if c.Duration != "" {
		fmt.Fprintf(sb, " => %s", c.Duration)
	}
	sb.WriteString("\n")
}

func interpretTimestamp(ts *Timestamp) string {
	open, shut := "<", ">"
	if !ts.IsActive {
		open, shut = "[", "]"
	}
	layout := timestampFormat
	if ts.IsDate {
		layout = datestampFormat
	}
	s := ts.Time.Format(layout)
	if ts.Interval != "" {
		s += " " + ts.Interval
	}
	return open + s + shut
}

func interpretParagraph(ctx *InterpretContext, p *Paragraph, sb *strings.Builder) {
	interpretChildren(ctx, p.contents, sb, 0)
	sb.WriteString("\n")
}

func interpretItem(ctx *InterpretContext, it *Item, sb *strings.Builder, depth int) {
	sb.WriteString(it.Bullet)
	if it.Counter != "" {
		fmt.Fprintf(sb, " [@%s]", it.Counter)
	}
	if it.Checkbox != "" {
		fmt.Fprintf(sb, " [%s]", it.Checkbox)
	}
	sb.WriteString(" ")
	if it.Tag != nil {
		interpretChildren(ctx, it.Tag, sb, 0)
		sb.WriteString(" :: ")
	}
	interpretChildren(ctx, it.contents, sb, depth+1)
}

func interpretTableRow(ctx *InterpretContext, row *TableRow, sb *strings.Builder) {
	if row.IsRule {
		sb.WriteString("|---|\n")
		return
	}
	sb.WriteString("|")
	for _, cell := range row.contents {
		sb.WriteString(" ")
		interpretNode(ctx, cell, sb, 0)
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func interpretGreaterBlock(ctx *InterpretContext, name, params string, children []Node, sb *strings.Builder) {
	fmt.Fprintf(sb, "#+BEGIN_%s %s\n", name, params)
	interpretChildren(ctx, children, sb, 0)
	fmt.Fprintf(sb, "#+END_%s\n", name)
}

func interpretLink(ctx *InterpretContext, l *Link, sb *strings.Builder) {
	if l.AutoLink {
		sb.WriteString(l.URL)
		return
	}
	sb.WriteString("[[")
	sb.WriteString(l.URL)
	sb.WriteString("]")
	if len(l.contents) > 0 {
		sb.WriteString("[")
		interpretChildren(ctx, l.contents, sb, 0)
		sb.WriteString("]")
	}
	sb.WriteString("]")
}
