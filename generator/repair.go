package generator

import (
	"regexp"
	"strings"
)

// Repairer coerces sanitized model output into a document carrying the
// structural anchors the preview frame needs.
type Repairer interface {
	Repair(text string) string
}

// RepairFunc adapts a plain function to Repairer.
type RepairFunc func(string) string

func (f RepairFunc) Repair(text string) string { return f(text) }

// CanonicalDoctype opens every repaired document.
const CanonicalDoctype = "<!DOCTYPE html>"

const (
	canonicalHTMLOpen = `<html lang="en">`
	canonicalLangAttr = `lang="en"`
	closingHTML       = "</html>"
)

var (
	leadingDoctypeRe = regexp.MustCompile(`(?i)^<!doctype html>`)
	// any doctype, including ones a leaked lang="en" corrupted: <!DOCTYPE < lang="en">
	doctypeRe       = regexp.MustCompile(`(?i)<!doctype[^>]*>`)
	strayLangAttrRe = regexp.MustCompile(`(?i)(?:^|\s+)lang="en"`)
	langOpenTagRe   = regexp.MustCompile(`(?i)<\s*lang\b[^>]*>`)
	langCloseTagRe  = regexp.MustCompile(`(?i)</\s*lang\s*>`)
	htmlOpenTagRe   = regexp.MustCompile(`(?i)<html(\s[^>]*)?>`)
	langAttrRe      = regexp.MustCompile(`(?i)(\s)lang\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'>]+)`)
)

// HeuristicRepairer is the pattern-based repairer. It does not parse HTML:
// nesting, attributes outside the root tag and script or style bodies are
// never inspected. Only the doctype and the html open/close tags are
// guaranteed.
//
// A leading <!doctype html> is kept as written. Every other doctype and
// every lang artifact is deleted until none is left, including artifacts
// spliced together by an earlier deletion; the html tag and the doctype
// are put back only after that.
type HeuristicRepairer struct{}

func (HeuristicRepairer) Repair(text string) string {
	s := strings.TrimSpace(text)

	lead, sep := CanonicalDoctype, "\n"
	if loc := leadingDoctypeRe.FindStringIndex(s); loc != nil {
		lead, s = s[:loc[1]], s[loc[1]:]
		sep = s[:len(s)-len(strings.TrimLeft(s, " \t\r\n"))]
	}

	body := stripArtifacts(s)
	// an appended </html> can close a dangling "<lang" or "<!doctype"
	// fragment, which is then stripped along with it; each round shrinks
	// the body, so the loop ends
	for !strings.Contains(strings.ToLower(body), closingHTML) {
		body = stripArtifacts(body + "\n" + closingHTML)
	}
	return lead + sep + enforceHTMLLang(body)
}

// Repair runs the default HeuristicRepairer.
func Repair(text string) string {
	return HeuristicRepairer{}.Repair(text)
}

// stripArtifacts deletes doctypes, <lang> pseudo tags and stray lang="en"
// attributes until the text stops changing. Every rule only deletes, so
// each round that changes the text shortens it.
func stripArtifacts(s string) string {
	for {
		next := doctypeRe.ReplaceAllString(s, "")
		next = removeStrayLangAttrs(next)
		next = langOpenTagRe.ReplaceAllString(next, "")
		next = langCloseTagRe.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}

// removeStrayLangAttrs drops every lang="en" that does not sit inside an
// <html ...> open tag.
func removeStrayLangAttrs(s string) string {
	attrs := strayLangAttrRe.FindAllStringIndex(s, -1)
	if len(attrs) == 0 {
		return s
	}
	tags := htmlOpenTagRe.FindAllStringIndex(s, -1)
	inTag := func(start, end int) bool {
		for _, t := range tags {
			if start > t[0] && end < t[1] {
				return true
			}
		}
		return false
	}

	var b strings.Builder
	last := 0
	for _, a := range attrs {
		if inTag(a[0], a[1]) {
			continue
		}
		b.WriteString(s[last:a[0]])
		last = a[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// enforceHTMLLang makes the first <html> open tag carry lang="en", opening
// the body with one when it has none.
func enforceHTMLLang(s string) string {
	loc := htmlOpenTagRe.FindStringIndex(s)
	if loc == nil {
		return canonicalHTMLOpen + "\n" + s
	}

	tag := s[loc[0]:loc[1]]
	fixed := fixHTMLTag(tag)
	if fixed == tag {
		return s
	}
	return s[:loc[0]] + fixed + s[loc[1]:]
}

func fixHTMLTag(tag string) string {
	m := langAttrRe.FindStringSubmatchIndex(tag)
	if m == nil {
		// <html> or <html attrs...>
		return `<html lang="en"` + tag[len("<html"):]
	}
	attr := strings.TrimLeft(tag[m[0]:m[1]], " \t\r\n")
	if strings.EqualFold(attr, canonicalLangAttr) {
		return tag
	}
	return tag[:m[0]] + tag[m[2]:m[3]] + canonicalLangAttr + tag[m[1]:]
}
