package cypher

import (
	"fmt"
	"strconv"
	"strings"
)

type parser struct {
	toks []token
	pos  int
}

// Parse lexes and parses src into a Query, or returns a *ParseError carrying
// the byte offset of the failure.
func Parse(src string) (*Query, error) {
	toks, err := newLexer(src).tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, p.errf("unexpected trailing input %q", p.cur().text)
	}
	return q, nil
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Position: p.cur().pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expectKeyword(kw string) error {
	if p.cur().kind == tokKeyword && p.cur().text == kw {
		p.advance()
		return nil
	}
	return p.errf("expected %q, got %q", kw, p.cur().text)
}

func (p *parser) isKeyword(kw string) bool {
	return p.cur().kind == tokKeyword && p.cur().text == kw
}

func (p *parser) parseQuery() (*Query, error) {
	q := &Query{Limit: -1}
	if !p.isKeyword("MATCH") {
		return nil, p.errf("expected MATCH, got %q", p.cur().text)
	}
	for p.isKeyword("MATCH") {
		p.advance()
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		q.Matches = append(q.Matches, path)
	}

	if p.isKeyword("WHERE") {
		p.advance()
		expr, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		q.Where = expr
	}

	if err := p.expectKeyword("RETURN"); err != nil {
		return nil, err
	}
	items, err := p.parseReturnItems()
	if err != nil {
		return nil, err
	}
	q.Returns = items

	if p.isKeyword("ORDER") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		order, err := p.parseOrderItems()
		if err != nil {
			return nil, err
		}
		q.OrderBy = order
	}

	if p.isKeyword("LIMIT") {
		p.advance()
		if p.cur().kind != tokNumber {
			return nil, p.errf("expected number after LIMIT")
		}
		n, _ := strconv.Atoi(p.cur().text)
		q.Limit = n
		p.advance()
	}

	return q, nil
}

func (p *parser) parsePath() (MatchClause, error) {
	var mc MatchClause
	node, err := p.parseNodePattern()
	if err != nil {
		return mc, err
	}
	mc.Nodes = append(mc.Nodes, node)

	for p.cur().kind == tokDash {
		rel, err := p.parseRelPattern()
		if err != nil {
			return mc, err
		}
		mc.Rels = append(mc.Rels, rel)
		next, err := p.parseNodePattern()
		if err != nil {
			return mc, err
		}
		mc.Nodes = append(mc.Nodes, next)
	}
	return mc, nil
}

func (p *parser) parseNodePattern() (NodePattern, error) {
	var n NodePattern
	if p.cur().kind != tokLParen {
		return n, p.errf("expected '(' to start a node pattern, got %q", p.cur().text)
	}
	p.advance()
	if p.cur().kind == tokIdent {
		n.Var = p.cur().text
		p.advance()
	}
	if p.cur().kind == tokColon {
		p.advance()
		if p.cur().kind != tokIdent {
			return n, p.errf("expected label after ':'")
		}
		n.Label = p.cur().text
		p.advance()
	}
	if p.cur().kind == tokLBrace {
		props, err := p.parsePropsMap()
		if err != nil {
			return n, err
		}
		n.Props = props
	}
	if p.cur().kind != tokRParen {
		return n, p.errf("expected ')' to close node pattern, got %q", p.cur().text)
	}
	p.advance()
	return n, nil
}

func (p *parser) parseRelPattern() (RelPattern, error) {
	rel := RelPattern{MinHops: 1, MaxHops: 1}
	if p.cur().kind != tokDash {
		return rel, p.errf("expected '-' to start a relationship pattern")
	}
	p.advance()
	if p.cur().kind != tokLBracket {
		return rel, p.errf("expected '[' in relationship pattern")
	}
	p.advance()

	if p.cur().kind == tokIdent {
		rel.Var = p.cur().text
		p.advance()
	}
	if p.cur().kind == tokColon {
		p.advance()
		if p.cur().kind != tokIdent {
			return rel, p.errf("expected relationship type after ':'")
		}
		rel.Type = p.cur().text
		p.advance()
	}
	if p.cur().kind == tokStar {
		p.advance()
		rel.MinHops, rel.MaxHops = 1, 1
		if p.cur().kind == tokNumber {
			n, _ := strconv.Atoi(p.cur().text)
			rel.MinHops, rel.MaxHops = n, n
			p.advance()
			if p.cur().kind == tokDotDot {
				p.advance()
				if p.cur().kind == tokNumber {
					max, _ := strconv.Atoi(p.cur().text)
					rel.MaxHops = max
					p.advance()
				} else {
					rel.MaxHops = rel.MinHops
				}
			}
		}
	}
	if p.cur().kind == tokLBrace {
		props, err := p.parsePropsMap()
		if err != nil {
			return rel, err
		}
		rel.Props = props
	}
	if p.cur().kind != tokRBracket {
		return rel, p.errf("expected ']' to close relationship pattern")
	}
	p.advance()
	if p.cur().kind != tokArrow {
		return rel, p.errf("expected '->' after relationship pattern")
	}
	p.advance()
	return rel, nil
}

func (p *parser) parsePropsMap() (map[string]Literal, error) {
	props := make(map[string]Literal)
	p.advance() // consume '{'
	if p.cur().kind == tokRBrace {
		p.advance()
		return props, nil
	}
	for {
		if p.cur().kind != tokIdent {
			return nil, p.errf("expected property key")
		}
		key := p.cur().text
		p.advance()
		if p.cur().kind != tokColon {
			return nil, p.errf("expected ':' after property key")
		}
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		props[key] = lit
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur().kind != tokRBrace {
		return nil, p.errf("expected '}' to close property map")
	}
	p.advance()
	return props, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	switch p.cur().kind {
	case tokString:
		lit := Literal{Kind: LiteralString, String: p.cur().text}
		p.advance()
		return lit, nil
	case tokNumber:
		n, _ := strconv.ParseFloat(p.cur().text, 64)
		lit := Literal{Kind: LiteralNumber, Number: n}
		p.advance()
		return lit, nil
	case tokIdent:
		if strings.EqualFold(p.cur().text, "true") || strings.EqualFold(p.cur().text, "false") {
			lit := Literal{Kind: LiteralBool, Bool: strings.EqualFold(p.cur().text, "true")}
			p.advance()
			return lit, nil
		}
	}
	return Literal{}, p.errf("expected a literal value, got %q", p.cur().text)
}

func (p *parser) parseOrExpr() (Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("OR") {
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = OrExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAndExpr() (Expr, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("AND") {
		p.advance()
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = AndExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNotExpr() (Expr, error) {
	if p.isKeyword("NOT") {
		p.advance()
		inner, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return NotExpr{Inner: inner}, nil
	}
	return p.parsePrimaryExpr()
}

func (p *parser) parsePrimaryExpr() (Expr, error) {
	if p.cur().kind == tokLParen {
		p.advance()
		inner, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokRParen {
			return nil, p.errf("expected ')' to close parenthesized expression")
		}
		p.advance()
		return inner, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	if p.cur().kind != tokIdent {
		return nil, p.errf("expected a variable, got %q", p.cur().text)
	}
	v := p.cur().text
	p.advance()
	if p.cur().kind != tokDot {
		return nil, p.errf("expected '.' after variable %q", v)
	}
	p.advance()
	if p.cur().kind != tokIdent {
		return nil, p.errf("expected property name after '.'")
	}
	prop := p.cur().text
	p.advance()

	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	if op == "IN" {
		if p.cur().kind != tokLBracket {
			return nil, p.errf("expected '[' after IN")
		}
		p.advance()
		var values []Literal
		for p.cur().kind != tokRBracket {
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			values = append(values, lit)
			if p.cur().kind == tokComma {
				p.advance()
				continue
			}
			break
		}
		if p.cur().kind != tokRBracket {
			return nil, p.errf("expected ']' to close IN list")
		}
		p.advance()
		return Comparison{Var: v, Prop: prop, Op: op, Values: values}, nil
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return Comparison{Var: v, Prop: prop, Op: op, Value: lit}, nil
}

func (p *parser) parseOperator() (string, error) {
	switch p.cur().kind {
	case tokEQ:
		p.advance()
		return "=", nil
	case tokNEQ:
		p.advance()
		return "<>", nil
	case tokLT:
		p.advance()
		return "<", nil
	case tokGT:
		p.advance()
		return ">", nil
	case tokLTE:
		p.advance()
		return "<=", nil
	case tokGTE:
		p.advance()
		return ">=", nil
	}
	if p.isKeyword("CONTAINS") {
		p.advance()
		return "CONTAINS", nil
	}
	if p.isKeyword("STARTS") {
		p.advance()
		if err := p.expectKeyword("WITH"); err != nil {
			return "", err
		}
		return "STARTS WITH", nil
	}
	if p.isKeyword("ENDS") {
		p.advance()
		if err := p.expectKeyword("WITH"); err != nil {
			return "", err
		}
		return "ENDS WITH", nil
	}
	if p.isKeyword("IN") {
		p.advance()
		return "IN", nil
	}
	return "", p.errf("expected a comparison operator, got %q", p.cur().text)
}

func (p *parser) parseReturnItems() ([]ReturnItem, error) {
	if p.cur().kind == tokStar {
		p.advance()
		return []ReturnItem{{Star: true}}, nil
	}
	var items []ReturnItem
	for {
		item, err := p.parseReturnItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

func (p *parser) parseReturnItem() (ReturnItem, error) {
	var item ReturnItem
	if p.cur().kind != tokIdent {
		return item, p.errf("expected a return variable, got %q", p.cur().text)
	}
	item.Var = p.cur().text
	p.advance()
	if p.cur().kind == tokDot {
		p.advance()
		if p.cur().kind != tokIdent {
			return item, p.errf("expected property name after '.'")
		}
		item.Prop = p.cur().text
		p.advance()
	}
	if p.isKeyword("AS") {
		p.advance()
		if p.cur().kind != tokIdent {
			return item, p.errf("expected alias after AS")
		}
		item.Alias = p.cur().text
		p.advance()
	}
	return item, nil
}

func (p *parser) parseOrderItems() ([]OrderItem, error) {
	var items []OrderItem
	for {
		if p.cur().kind != tokIdent {
			return nil, p.errf("expected a variable in ORDER BY")
		}
		v := p.cur().text
		p.advance()
		var prop string
		if p.cur().kind == tokDot {
			p.advance()
			if p.cur().kind != tokIdent {
				return nil, p.errf("expected property name after '.'")
			}
			prop = p.cur().text
			p.advance()
		}
		desc := false
		if p.isKeyword("DESC") {
			desc = true
			p.advance()
		} else if p.isKeyword("ASC") {
			p.advance()
		}
		items = append(items, OrderItem{Var: v, Prop: prop, Descending: desc})
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}
