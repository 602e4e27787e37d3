package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/sqlguard/sqlguard"
)

var (
	paramBindRe = regexp.MustCompile(`#\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}`)
	rawSpliceRe = regexp.MustCompile(`\$\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}`)
)

// Mapper is a parsed collection of statements from one mapper document.
type Mapper struct {
	Statements []*Statement
}

// ParseMapper parses a MyBatis-style XML mapper document. Malformed XML
// never aborts the whole document: it surfaces as a single statement
// carrying a MYBATIS_PARSE_ERROR finding, so sibling statements in other
// documents can still be analyzed.
func ParseMapper(xmlText string) (*Mapper, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return &Mapper{Statements: []*Statement{{
			ID:      "",
			Findings: []Finding{{
				Code:    "MYBATIS_PARSE_ERROR",
				Level:   sqlguard.RiskLow,
				Message: "malformed mapper XML: " + err.Error(),
			}},
		}}}, nil
	}

	root := doc.Root()
	if root == nil {
		return &Mapper{}, nil
	}

	extractor, err := newCELVariableExtractor()
	if err != nil {
		return nil, fmt.Errorf("building expression extractor: %w", err)
	}

	includes := collectIncludes(root)

	p := &parser{extractor: extractor, includes: includes}

	m := &Mapper{}
	for _, el := range root.ChildElements() {
		switch strings.ToLower(el.Tag) {
		case "select", "insert", "update", "delete":
			m.Statements = append(m.Statements, p.parseStatement(el))
		}
	}
	return m, nil
}

func collectIncludes(root *etree.Element) map[string]*etree.Element {
	out := make(map[string]*etree.Element)
	for _, el := range root.ChildElements() {
		if strings.ToLower(el.Tag) == "sql" {
			if id := el.SelectAttrValue("id", ""); id != "" {
				out[id] = el
			}
		}
	}
	return out
}

type parser struct {
	extractor *celVariableExtractor
	includes  map[string]*etree.Element
}

func (p *parser) parseStatement(el *etree.Element) *Statement {
	stmt := &Statement{
		ID:      el.SelectAttrValue("id", ""),
		Command: strings.ToUpper(el.Tag),
	}
	stmt.Body = p.parseChildren(el, nil, nil)
	return stmt
}

// parseChildren walks etree children, threading the active branch
// witness (list of guarding <if>/<when> conditions) down into leaf nodes.
func (p *parser) parseChildren(el *etree.Element, witness []Branch, seenIncludes map[string]bool) []Node {
	var nodes []Node
	for _, child := range el.Child {
		switch c := child.(type) {
		case *etree.CharData:
			if frags := p.parseText(c.Data, witness); frags != nil {
				nodes = append(nodes, frags...)
			}
		case *etree.Element:
			if n := p.parseElement(c, witness, seenIncludes); n != nil {
				nodes = append(nodes, n...)
			}
		}
	}
	return nodes
}

func (p *parser) parseElement(el *etree.Element, witness []Branch, seenIncludes map[string]bool) []Node {
	switch strings.ToLower(el.Tag) {
	case "if":
		branch := p.branchFor(el, "test", false)
		children := p.parseChildren(el, append(append([]Branch{}, witness...), branch), seenIncludes)
		return []Node{Conditional{Branch: branch, Children: children}}

	case "choose":
		var whens []Conditional
		var otherwise []Node
		for _, child := range el.ChildElements() {
			switch strings.ToLower(child.Tag) {
			case "when":
				branch := p.branchFor(child, "test", false)
				children := p.parseChildren(child, append(append([]Branch{}, witness...), branch), seenIncludes)
				whens = append(whens, Conditional{Branch: branch, Children: children})
			case "otherwise":
				otherwise = p.parseChildren(child, witness, seenIncludes)
			}
		}
		return []Node{Choose{Whens: whens, Otherwise: otherwise}}

	case "foreach":
		children := p.parseChildren(el, witness, seenIncludes)
		return []Node{Loop{
			Collection: el.SelectAttrValue("collection", ""),
			Item:       el.SelectAttrValue("item", ""),
			Open:       el.SelectAttrValue("open", ""),
			Close:      el.SelectAttrValue("close", ""),
			Separator:  el.SelectAttrValue("separator", ""),
			Children:   children,
		}}

	case "where":
		children := p.parseChildren(el, witness, seenIncludes)
		return []Node{TrimWrap{
			Prefix:          "WHERE",
			PrefixOverrides: []string{"AND", "OR"},
			Children:        children,
			InjectsWhere:    true,
		}}

	case "set":
		children := p.parseChildren(el, witness, seenIncludes)
		return []Node{TrimWrap{
			Prefix:          "SET",
			SuffixOverrides: []string{","},
			Children:        children,
		}}

	case "trim":
		children := p.parseChildren(el, witness, seenIncludes)
		return []Node{TrimWrap{
			Prefix:          el.SelectAttrValue("prefix", ""),
			Suffix:          el.SelectAttrValue("suffix", ""),
			PrefixOverrides: splitOverrides(el.SelectAttrValue("prefixOverrides", "")),
			SuffixOverrides: splitOverrides(el.SelectAttrValue("suffixOverrides", "")),
			Children:        children,
		}}

	case "include":
		refID := el.SelectAttrValue("refid", "")
		if seenIncludes == nil {
			seenIncludes = map[string]bool{}
		}
		target, ok := p.includes[refID]
		if !ok || seenIncludes[refID] {
			return []Node{IncludeRef{RefID: refID, Missing: true}}
		}
		next := make(map[string]bool, len(seenIncludes)+1)
		for k := range seenIncludes {
			next[k] = true
		}
		next[refID] = true
		resolved := p.parseChildren(target, witness, next)
		return []Node{IncludeRef{RefID: refID, Resolved: resolved}}

	default:
		return p.parseChildren(el, witness, seenIncludes)
	}
}

func (p *parser) branchFor(el *etree.Element, attr string, negated bool) Branch {
	expr := el.SelectAttrValue(attr, "")
	return Branch{
		Expr:      expr,
		Variables: p.extractor.extractVariables(expr),
		Negated:   negated,
	}
}

// parseText splits one text fragment into static/bind/splice nodes,
// classifying each placeholder's syntactic host from surrounding text.
func (p *parser) parseText(text string, witness []Branch) []Node {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var nodes []Node
	remaining := text
	offset := 0
	for {
		bindLoc := paramBindRe.FindStringSubmatchIndex(remaining)
		spliceLoc := rawSpliceRe.FindStringSubmatchIndex(remaining)

		if bindLoc == nil && spliceLoc == nil {
			nodes = append(nodes, Static{Text: remaining, Host: hostFor(text, len(text)), Witness: witness})
			break
		}

		useBind := bindLoc != nil && (spliceLoc == nil || bindLoc[0] < spliceLoc[0])
		if useBind {
			before := remaining[:bindLoc[0]]
			if strings.TrimSpace(before) != "" {
				nodes = append(nodes, Static{Text: before, Host: hostFor(text, offset), Witness: witness})
			}
			name := remaining[bindLoc[2]:bindLoc[3]]
			nodes = append(nodes, ParamBind{Name: name, Host: hostFor(text, offset+bindLoc[0]), Witness: witness})
			offset += bindLoc[1]
			remaining = remaining[bindLoc[1]:]
		} else {
			before := remaining[:spliceLoc[0]]
			if strings.TrimSpace(before) != "" {
				nodes = append(nodes, Static{Text: before, Host: hostFor(text, offset), Witness: witness})
			}
			name := remaining[spliceLoc[2]:spliceLoc[3]]
			nodes = append(nodes, RawInterpolation{Name: name, Host: hostFor(text, offset+spliceLoc[0]), Witness: witness})
			offset += spliceLoc[1]
			remaining = remaining[spliceLoc[1]:]
		}
	}
	return nodes
}

// hostFor inspects the nearest preceding keyword in the full fragment text
// to classify a placeholder's syntactic position. This is a heuristic over
// raw text, not a real SQL parse, since template fragments are frequently
// not valid standalone SQL.
func hostFor(fullText string, pos int) Host {
	upto := strings.ToUpper(fullText[:min(pos, len(fullText))])
	last := -1
	host := HostUnknown

	check := func(kw string, h Host) {
		if idx := strings.LastIndex(upto, kw); idx > last {
			last = idx
			host = h
		}
	}
	check("WHERE", HostWhere)
	check("ORDER BY", HostOrderBy)
	check("LIMIT", HostLimit)
	check("OFFSET", HostLimit)
	check("SELECT", HostColumns)
	check("FROM", HostTable)
	check("SET", HostColumns)
	return host
}

func splitOverrides(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
