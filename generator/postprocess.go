package generator

import (
	"html"
	"regexp"
	"strings"
)

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Pipeline turns a raw model reply into a publishable document.
type Pipeline struct {
	Repairer Repairer
	Rewriter *EndpointRewriter
}

// NewPipeline uses the heuristic repairer and rewrites placeholders per m.
func NewPipeline(m EndpointMap) *Pipeline {
	return &Pipeline{
		Repairer: HeuristicRepairer{},
		Rewriter: NewEndpointRewriter(m),
	}
}

// PostProcess runs Sanitize, Repair, the optional endpoint rewrite and
// Validate, in that order.
func (p *Pipeline) PostProcess(raw string, rewrite bool) (string, error) {
	s := Sanitize(raw)
	if s == "" {
		return "", ErrIncompleteDocument
	}
	repairer := p.Repairer
	if repairer == nil {
		repairer = HeuristicRepairer{}
	}
	s = repairer.Repair(s)
	if rewrite {
		s = p.Rewriter.Rewrite(s)
	}
	return Validate(s)
}

// ExtractTitle returns the text of the first <title> element, if any.
func ExtractTitle(doc string) string {
	m := titleRe.FindStringSubmatch(doc)
	if len(m) < 2 {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(m[1])), " ")
}
