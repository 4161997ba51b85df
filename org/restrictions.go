package org

// allObjects is every object kind, used as the default (unrestricted) set.
var allObjects = RestrictionSet{
	KindBold: true, KindCode: true, KindEntity: true, KindExportSnippet: true,
	KindFootnoteReference: true, KindInlineBabelCall: true, KindInlineSrcBlock: true,
	KindItalic: true, KindLatexFragment: true, KindLineBreak: true, KindLink: true,
	KindMacro: true, KindRadioTarget: true, KindStatisticsCookie: true,
	KindStrikeThrough: true, KindSubscript: true, KindSuperscript: true,
	KindTableCell: true, KindTarget: true, KindTimestamp: true, KindUnderline: true,
	KindVerbatim: true,
}

func without(kinds ...Kind) RestrictionSet {
	r := RestrictionSet{}
	for k, v := range allObjects {
		r[k] = v
	}
	for _, k := range kinds {
		delete(r, k)
	}
	return r
}

// restrictionTable implements spec.md §3's R(kind) -> set<object-kind>
// table for every container kind that admits objects.
var restrictionTable = map[Kind]RestrictionSet{
	KindParagraph:    allObjects,
	KindHeadline:     without(KindFootnoteReference), // title
	KindInlinetask:   without(KindFootnoteReference),
	KindItem:         allObjects, // tag secondary string
	KindTableCell:    without(KindInlineBabelCall, KindLineBreak),
	KindLink:         without(KindLineBreak, KindLink, KindRadioTarget, KindFootnoteReference),
	KindRadioTarget:  without(KindLink, KindFootnoteReference, KindTarget, KindRadioTarget),
	KindBold:         allObjects,
	KindItalic:       allObjects,
	KindUnderline:    allObjects,
	KindStrikeThrough: allObjects,
	KindSubscript:    allObjects,
	KindSuperscript:  allObjects,
	KindFootnoteDefinition: allObjects,
	KindVerseBlock:   allObjects,
	KindPlanning:     RestrictionSet{KindTimestamp: true},
}

// Restriction returns the permitted object set for a container kind,
// defaulting to every object kind when the container isn't in the table
// (e.g. a plain document-level context).
func Restriction(k Kind) RestrictionSet {
	if r, ok := restrictionTable[k]; ok {
		return r
	}
	return allObjects
}
