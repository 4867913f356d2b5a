package shell

import "strings"

// Parser incrementally assembles CommandLines from a stream of fed bytes.
// It is grounded on the teaching course's streaming parser: Feed appends
// raw input, and PopNext extracts one complete statement at a time,
// leaving any trailing partial statement buffered for the next Feed.
type Parser struct {
	buf []byte
}

// NewParser returns an empty Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends data to the parser's internal buffer.
func (p *Parser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// PopNext extracts the next complete CommandLine from the buffered input.
// It returns (nil, nil) when the buffer doesn't yet contain one, in which
// case the caller should Feed more data and try again. A non-nil error
// reports a malformed statement; the offending bytes remain consumed from
// the buffer (they can never be completed), so parsing of later,
// well-formed statements can continue on the next call.
func (p *Parser) PopNext() (*CommandLine, error) {
	line := &CommandLine{}
	pos := 0
	end := len(p.buf)

	var finishTok token
	finished := false

parseLoop:
	for pos < end {
		consumed, tok, ok := lexToken(p.buf[pos:end])
		if !ok {
			return nil, nil
		}
		pos += consumed

		switch tok.typ {
		case tokenStr:
			if n := len(line.Exprs); n > 0 && line.Exprs[n-1].Type == ExprCommand {
				line.Exprs[n-1].Cmd.Args = append(line.Exprs[n-1].Cmd.Args, string(tok.data))
				continue
			}
			line.Exprs = append(line.Exprs, Expr{Type: ExprCommand, Cmd: Command{Exe: string(tok.data)}})

		case tokenNewLine:
			if len(line.Exprs) == 0 {
				continue
			}
			finishTok = tok
			finished = true
			break parseLoop

		case tokenPipe, tokenAnd, tokenOr:
			if len(line.Exprs) == 0 {
				p.consume(pos)
				return nil, noLeftArgError(tok.typ)
			}
			if line.Exprs[len(line.Exprs)-1].Type != ExprCommand {
				p.consume(pos)
				return nil, notACommandError(tok.typ)
			}
			line.Exprs = append(line.Exprs, Expr{Type: operatorExprType(tok.typ)})

		case tokenOutNew, tokenOutAppend, tokenBackground:
			finishTok = tok
			finished = true
			break parseLoop
		}
	}

	if !finished {
		return nil, nil
	}

	tok := finishTok
	if tok.typ == tokenOutNew || tok.typ == tokenOutAppend {
		if tok.typ == tokenOutNew {
			line.OutType = OutputFileNew
		} else {
			line.OutType = OutputFileAppend
		}

		consumed, next, ok := lexToken(p.buf[pos:end])
		if !ok {
			return nil, nil
		}
		pos += consumed
		if next.typ != tokenStr {
			p.consume(pos)
			return nil, ErrOutputRedirectBadArg
		}
		line.OutFile = string(next.data)

		consumed, next, ok = lexToken(p.buf[pos:end])
		if !ok {
			return nil, nil
		}
		pos += consumed
		tok = next
	}

	if tok.typ == tokenBackground {
		line.Background = true
		consumed, next, ok := lexToken(p.buf[pos:end])
		if !ok {
			return nil, nil
		}
		pos += consumed
		tok = next
	}

	if tok.typ == tokenNewLine {
		p.consume(pos)
		if n := len(line.Exprs); n > 0 && line.Exprs[n-1].Type != ExprCommand {
			return nil, ErrEndsNotWithACommand
		}
		return line, nil
	}
	p.consume(pos)
	return nil, ErrTooLateArguments
}

func (p *Parser) consume(n int) {
	p.buf = p.buf[n:]
}

// Close signals that no further input will be fed. It reports
// ErrEndsNotWithACommand if a partial statement remains buffered that can
// never be completed now that input has ended.
func (p *Parser) Close() error {
	if strings.TrimSpace(string(p.buf)) != "" {
		return ErrEndsNotWithACommand
	}
	return nil
}

func noLeftArgError(t tokenType) error {
	switch t {
	case tokenPipe:
		return ErrPipeWithNoLeftArg
	case tokenAnd:
		return ErrAndWithNoLeftArg
	default:
		return ErrOrWithNoLeftArg
	}
}

func notACommandError(t tokenType) error {
	switch t {
	case tokenPipe:
		return ErrPipeWithLeftArgNotACommand
	case tokenAnd:
		return ErrAndWithLeftArgNotACommand
	default:
		return ErrOrWithLeftArgNotACommand
	}
}

func operatorExprType(t tokenType) ExprType {
	switch t {
	case tokenPipe:
		return ExprPipe
	case tokenAnd:
		return ExprAnd
	default:
		return ExprOr
	}
}
