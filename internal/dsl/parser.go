package dsl

import "fmt"

// Parser turns surface text into a canonical Program.
type Parser struct {
	lex *lexer
	cur token
}

// Parse parses src into a Program, preserving source locations on every Form.
func Parse(src string) (*Program, error) {
	p := &Parser{lex: newLexer(src)}
	first, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	p.cur = first

	var prog Program
	for p.cur.kind != tokEOF {
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		prog.Forms = append(prog.Forms, form)
	}
	return &prog, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) parseForm() (Form, error) {
	if p.cur.kind != tokLParen {
		return Form{}, &ParseError{Message: "expected '(' to start a verb call", Line: p.cur.line, Column: p.cur.column}
	}
	loc := SourceLocation{Line: p.cur.line, Column: p.cur.column}
	if err := p.advance(); err != nil {
		return Form{}, err
	}

	if p.cur.kind != tokSymbol {
		return Form{}, &ParseError{Message: "expected verb name", Line: p.cur.line, Column: p.cur.column}
	}
	verb := p.cur.text
	if err := p.advance(); err != nil {
		return Form{}, err
	}

	form := Form{Verb: verb, Pairs: map[string]Value{}, Location: loc}

	for p.cur.kind == tokKeyword {
		key := p.cur.text
		if err := p.advance(); err != nil {
			return Form{}, err
		}
		val, err := p.parseValue()
		if err != nil {
			return Form{}, err
		}
		if key == "as" {
			if ident, ok := val.(VIdentifier); ok {
				form.As = string(ident)
				continue
			}
		}
		form.Pairs[key] = val
		form.Keys = append(form.Keys, key)
	}

	if p.cur.kind != tokRParen {
		return Form{}, &ParseError{Message: fmt.Sprintf("expected ')' to close verb call %q", verb), Line: p.cur.line, Column: p.cur.column}
	}
	if err := p.advance(); err != nil {
		return Form{}, err
	}
	return form, nil
}

func (p *Parser) parseValue() (Value, error) {
	switch p.cur.kind {
	case tokString:
		v := VString(p.cur.text)
		return v, p.advance()
	case tokNumber:
		v := parseNumberLiteral(p.cur.text)
		return v, p.advance()
	case tokSymbol:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if len(text) > 0 && text[0] == '@' {
			return VIdentifier(text[1:]), nil
		}
		switch text {
		case "true":
			return VBoolean(true), nil
		case "false":
			return VBoolean(false), nil
		}
		return VIdentifier(text), nil
	case tokLBracket:
		return p.parseList()
	case tokLBrace:
		return p.parseMap()
	default:
		return nil, &ParseError{Message: "expected a value", Line: p.cur.line, Column: p.cur.column}
	}
}

func (p *Parser) parseList() (Value, error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	list := VList{}
	for p.cur.kind != tokRBracket {
		if p.cur.kind == tokEOF {
			return nil, &ParseError{Message: "unterminated list", Line: p.cur.line, Column: p.cur.column}
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	if err := p.advance(); err != nil { // consume ']'
		return nil, err
	}
	return list, nil
}

func (p *Parser) parseMap() (Value, error) {
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	m := VMap{}
	for p.cur.kind != tokRBrace {
		if p.cur.kind == tokEOF {
			return nil, &ParseError{Message: "unterminated map", Line: p.cur.line, Column: p.cur.column}
		}
		if p.cur.kind != tokKeyword {
			return nil, &ParseError{Message: "expected a :key in map literal", Line: p.cur.line, Column: p.cur.column}
		}
		key := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	return m, nil
}
