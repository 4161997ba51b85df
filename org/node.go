package org

// Kind tags every parsed construct: an element kind, an object kind, or one
// of the sentinels Document/PlainText (spec.md §3 "Node... kind").
type Kind string

const (
	KindDocument  Kind = "document"
	KindPlainText Kind = "plain-text"

	// Greater elements (may contain other elements).
	KindCenterBlock        Kind = "center-block"
	KindDrawer             Kind = "drawer"
	KindDynamicBlock       Kind = "dynamic-block"
	KindFootnoteDefinition Kind = "footnote-definition"
	KindHeadline           Kind = "headline"
	KindInlinetask         Kind = "inlinetask"
	KindItem               Kind = "item"
	KindPlainList          Kind = "plain-list"
	KindPropertyDrawer     Kind = "property-drawer"
	KindQuoteBlock         Kind = "quote-block"
	KindSection            Kind = "section"
	KindSpecialBlock       Kind = "special-block"
	KindTable              Kind = "table"

	// Leaf elements.
	KindBabelCall        Kind = "babel-call"
	KindClock            Kind = "clock"
	KindComment          Kind = "comment"
	KindCommentBlock     Kind = "comment-block"
	KindDiarySexp        Kind = "diary-sexp"
	KindExampleBlock     Kind = "example-block"
	KindExportBlock      Kind = "export-block"
	KindFixedWidth       Kind = "fixed-width"
	KindHorizontalRule   Kind = "horizontal-rule"
	KindKeyword          Kind = "keyword"
	KindLatexEnvironment Kind = "latex-environment"
	KindNodeProperty     Kind = "node-property"
	KindParagraph        Kind = "paragraph"
	KindPlanning         Kind = "planning"
	KindSrcBlock         Kind = "src-block"
	KindTableRow         Kind = "table-row"
	KindVerseBlock       Kind = "verse-block"

	// Objects.
	KindBold              Kind = "bold"
	KindCode              Kind = "code"
	KindEntity            Kind = "entity"
	KindExportSnippet     Kind = "export-snippet"
	KindFootnoteReference Kind = "footnote-reference"
	KindInlineBabelCall   Kind = "inline-babel-call"
	KindInlineSrcBlock    Kind = "inline-src-block"
	KindItalic            Kind = "italic"
	KindLatexFragment     Kind = "latex-fragment"
	KindLineBreak         Kind = "line-break"
	KindLink              Kind = "link"
	KindMacro             Kind = "macro"
	KindRadioTarget       Kind = "radio-target"
	KindStatisticsCookie  Kind = "statistics-cookie"
	KindStrikeThrough     Kind = "strike-through"
	KindSubscript         Kind = "subscript"
	KindSuperscript       Kind = "superscript"
	KindTableCell         Kind = "table-cell"
	KindTarget            Kind = "target"
	KindTimestamp         Kind = "timestamp"
	KindUnderline         Kind = "underline"
	KindVerbatim          Kind = "verbatim"
)

// greaterElementKinds may contain other elements, never objects directly
// (spec.md §3 invariant 3).
var greaterElementKinds = map[Kind]bool{
	KindCenterBlock: true, KindDrawer: true, KindDynamicBlock: true,
	KindFootnoteDefinition: true, KindHeadline: true, KindInlinetask: true,
	KindItem: true, KindPlainList: true, KindPropertyDrawer: true,
	KindQuoteBlock: true, KindSection: true, KindSpecialBlock: true,
	KindTable: true,
}

// IsGreaterElement reports whether kind is a greater element (spec.md §3).
func IsGreaterElement(k Kind) bool { return greaterElementKinds[k] }

// recursiveObjectKinds contain other objects (spec.md §3).
var recursiveObjectKinds = map[Kind]bool{
	KindBold: true, KindItalic: true, KindLink: true, KindSubscript: true,
	KindRadioTarget: true, KindStrikeThrough: true, KindSuperscript: true,
	KindTableCell: true, KindUnderline: true,
}

// IsRecursiveObject reports whether kind is a recursive object (spec.md §3).
func IsRecursiveObject(k Kind) bool { return recursiveObjectKinds[k] }

// Node is a parsed construct: an element, an object, or a text fragment.
// It is implemented by pointer types so that Parent is a stable,
// non-owning back-link (spec.md Design Notes §9 favors an arena/index
// representation; this repo uses pointer identity as a simpler stand-in
// for the org tree itself, reserving the literal arena+generational-handle
// representation for the cache package, where elements must survive
// in-place mutation across synchronizer phases).
type Node interface {
	Kind() Kind
	Position() Position
	Begin() int
	End() int
	PostBlank() int
	SetPostBlank(int)
	ParentNode() Node
	setParent(Node)
	// Children returns this node's ordered content children: for greater
	// elements, child elements; for elements admitting inline content,
	// objects and text; for recursive objects, nested objects. It does
	// NOT include secondary-string properties (headline.title, item.tag,
	// ...) -- those are reached via type assertion, matching spec.md §3's
	// definition of secondary strings as separate named properties.
	Children() []Node
	SetChildren([]Node)
	// Range iterates over all of this node's children, including any
	// secondary strings it carries. See the teacher's NOTE in
	// org/document.go on why Range is a method rather than a bare
	// Children() getter: some kinds have content scattered across several
	// properties, and Range is the one place that knows how to walk all
	// of them without lying about what "children" means for that kind.
	Range(func(Node) bool)
	Copy() Node
	String() string
}

// Base holds the four universal properties of spec.md §3: begin, end,
// post-blank, and parent. Every concrete node type embeds it.
type Base struct {
	K         Kind
	begin     int
	end       int
	postBlank int
	parent    Node
	Pos       Position
	Props     map[string]string // affiliated metadata / extra keyed properties
}

func (b *Base) Kind() Kind            { return b.K }
func (b *Base) Position() Position    { return b.Pos }
func (b *Base) Begin() int            { return b.begin }
func (b *Base) End() int              { return b.end }
func (b *Base) PostBlank() int        { return b.postBlank }
func (b *Base) SetPostBlank(n int)    { b.postBlank = n }
func (b *Base) ParentNode() Node      { return b.parent }
func (b *Base) setParent(p Node)      { b.parent = p }

// Get returns an affiliated/extra property, or "" if absent.
func (b *Base) Get(key string) string {
	if b.Props == nil {
		return ""
	}
	return b.Props[key]
}

// Set stores an affiliated/extra property.
func (b *Base) Set(key, value string) {
	if b.Props == nil {
		b.Props = map[string]string{}
	}
	b.Props[key] = value
}

// Container embeds Base and adds the ordered child list shared by every
// greater element and every element/object that admits inline content
// (spec.md §3: "contents-begin, contents-end delimit the child range;
// contents is the ordered list of child nodes").
type Container struct {
	Base
	ContentsBegin int
	ContentsEnd   int
	contents      []Node
}

func (c *Container) Children() []Node { return c.contents }
func (c *Container) SetChildren(ns []Node) {
	c.contents = ns
	for _, n := range ns {
		if n != nil {
			n.setParent(nil) // caller (adopt) sets the real parent; see org/algebra.go
		}
	}
}
func (c *Container) Range(f func(Node) bool) {
	for _, child := range c.contents {
		if !f(child) {
			return
		}
	}
}

// RestrictionSet is the set of object kinds permitted inside a given
// container (spec.md §3 "Object restrictions", §4.3).
type RestrictionSet map[Kind]bool

func (r RestrictionSet) Allows(k Kind) bool { return r == nil || r[k] }
