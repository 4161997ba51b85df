package org

import "regexp"

// Planning is a leaf element carrying SCHEDULED/DEADLINE/CLOSED timestamps
// (spec.md §4.1 step 7, §4.5 S4 "headline with tags and planning").
type Planning struct {
	Base
	Scheduled *Timestamp
	Deadline  *Timestamp
	Closed    *Timestamp
}

// Clock is a leaf element: `CLOCK: [timestamp]--[timestamp] => HH:MM` or an
// open clock with no duration (spec.md §4.1 step 7).
type Clock struct {
	Base
	Start    *Timestamp
	Stop     *Timestamp
	Duration string
}

var planningLineRegexp = regexp.MustCompile(`(?i)^\s*(SCHEDULED|DEADLINE|CLOSED)\s*:\s*(<[^>]+>|\[[^\]]+\])`)
var clockLineRegexp = regexp.MustCompile(`(?i)^\s*CLOCK:\s*(.*)$`)

func lexPlanningOrClock(line string) (token, bool) {
	if planningLineRegexp.MatchString(line) {
		return token{kind: "planning", matches: []string{line}}, true
	}
	if m := clockLineRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "clock", content: m[1], matches: m}, true
	}
	return nilToken, false
}

func (t *Tree) parsePlanning(i int, stop stopFn) (int, Node) {
	p := &Planning{}
	p.K = KindPlanning
	p.begin = t.tokens[i].begin
	line := t.tokens[i].raw
	for _, m := range planningLineRegexp.FindAllStringSubmatchIndex(line, -1) {
		kw := line[m[2]:m[3]]
		ts := t.parseTimestamp(line[m[4]:m[5]])
		switch kw {
		case t.ScheduledKW, "Scheduled", "scheduled":
			p.Scheduled = ts
		case t.DeadlineKW, "Deadline", "deadline":
			p.Deadline = ts
		case t.ClosedKW, "Closed", "closed":
			p.Closed = ts
		}
	}
	p.end = t.tokens[i].end
	return 1, p
}

func (t *Tree) parseClock(i int, stop stopFn) (int, Node) {
	c := &Clock{}
	c.K = KindClock
	c.begin = t.tokens[i].begin
	c.end = t.tokens[i].end
	content := t.tokens[i].content
	if m := regexp.MustCompile(`(<[^>]+>|\[[^\]]+\])--(<[^>]+>|\[[^\]]+\])\s*=>\s*([\d:]+)`).FindStringSubmatch(content); m != nil {
		c.Start = t.parseTimestamp(m[1])
		c.Stop = t.parseTimestamp(m[2])
		c.Duration = m[3]
	} else if m := regexp.MustCompile(`(<[^>]+>|\[[^\]]+\])`).FindStringSubmatch(content); m != nil {
		c.Start = t.parseTimestamp(m[1])
	}
	return 1, c
}

func (n *Planning) Copy() Node {
	cp := &Planning{Base: n.Base}
	if n.Scheduled != nil {
		cp.Scheduled = n.Scheduled.Copy().(*Timestamp)
	}
	if n.Deadline != nil {
		cp.Deadline = n.Deadline.Copy().(*Timestamp)
	}
	if n.Closed != nil {
		cp.Closed = n.Closed.Copy().(*Timestamp)
	}
	return cp
}
func (n *Planning) String() string     { return Interpret(defaultInterpretContext(), n) }
func (n *Planning) Children() []Node   { return nil }
func (n *Planning) SetChildren([]Node) {}

// Range visits Planning's secondary-string timestamp properties (spec.md
// §3: "secondary strings... reached via Range, not Children").
func (n *Planning) Range(f func(Node) bool) {
	for _, ts := range []*Timestamp{n.Scheduled, n.Deadline, n.Closed} {
		if ts == nil {
			continue
		}
		if !f(ts) {
			return
		}
	}
}

func (n *Clock) Copy() Node {
	cp := &Clock{Base: n.Base, Duration: n.Duration}
	if n.Start != nil {
		cp.Start = n.Start.Copy().(*Timestamp)
	}
	if n.Stop != nil {
		cp.Stop = n.Stop.Copy().(*Timestamp)
	}
	return cp
}
func (n *Clock) String() string     { return Interpret(defaultInterpretContext(), n) }
func (n *Clock) Children() []Node   { return nil }
func (n *Clock) SetChildren([]Node) {}
func (n *Clock) Range(f func(Node) bool) {
	for _, ts := range []*Timestamp{n.Start, n.Stop} {
		if ts == nil {
			continue
		}
		if !f(ts) {
			return
		}
	}
}
