// Package reader turns s-expression source text into the internal/sexpr
// tree the codegen core consumes. spec.md places the parser/tree-rewriter
// out of the core's scope ("the core treats its output as input"); this
// reader is a literal, mechanical recursive descent over parenthesized
// forms — no rewriting, no desugaring, no type inference.
package reader

import (
	"fmt"
	"strconv"

	"classgen/internal/diag"
	"classgen/internal/lexer"
	"classgen/internal/sexpr"
	"classgen/internal/token"
)

// Reader consumes tokens from a Lexer and builds sexpr.Node trees.
type Reader struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	file   string
	errors []string
}

// New creates a Reader over source text. file is used only to stamp
// positions on the nodes it produces (diag.Position.File).
func New(l *lexer.Lexer, file string) *Reader {
	r := &Reader{l: l, file: file}
	r.nextToken()
	r.nextToken()
	return r
}

func (r *Reader) nextToken() {
	r.curToken = r.peekToken
	r.peekToken = r.l.NextToken()
}

func (r *Reader) Errors() []string { return r.errors }

func (r *Reader) errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *Reader) pos() diag.Position {
	return diag.Position{File: r.file, Line: r.curToken.Line, Column: r.curToken.Column}
}

// ReadProgram reads every top-level form and wraps them in a single
// (do ...) list, the shape internal/codegen's driver expects as the
// top-level expression to lower into main.
func (r *Reader) ReadProgram() *sexpr.List {
	prog := &sexpr.List{PosVal: r.pos()}
	prog.Items = append(prog.Items, sexpr.Sym("do"))
	for r.curToken.Type != token.EOF {
		n := r.readForm()
		if n != nil {
			prog.Items = append(prog.Items, n)
		}
	}
	return prog
}

// readForm reads exactly one node: an atom or a fully-parenthesized list.
func (r *Reader) readForm() sexpr.Node {
	switch r.curToken.Type {
	case token.LPAREN:
		return r.readList()
	case token.INT:
		n, err := strconv.ParseInt(r.curToken.Literal, 10, 64)
		if err != nil {
			r.errorf("invalid integer literal %q at %s", r.curToken.Literal, r.pos())
		}
		a := &sexpr.Atom{Kind: sexpr.AtomInt, Int: n, PosVal: r.pos()}
		r.nextToken()
		return a
	case token.FLOAT:
		f, err := strconv.ParseFloat(r.curToken.Literal, 64)
		if err != nil {
			r.errorf("invalid float literal %q at %s", r.curToken.Literal, r.pos())
		}
		a := &sexpr.Atom{Kind: sexpr.AtomFloat, Float: f, PosVal: r.pos()}
		r.nextToken()
		return a
	case token.STRING:
		a := &sexpr.Atom{Kind: sexpr.AtomString, Str: r.curToken.Literal, PosVal: r.pos()}
		r.nextToken()
		return a
	case token.SYMLIT:
		a := &sexpr.Atom{Kind: sexpr.AtomSymbolLiteral, Str: r.curToken.Literal, PosVal: r.pos()}
		r.nextToken()
		return a
	case token.SYMBOL:
		a := &sexpr.Atom{Kind: sexpr.AtomSymbol, Str: r.curToken.Literal, PosVal: r.pos()}
		r.nextToken()
		return a
	case token.RPAREN:
		r.errorf("unexpected ) at %s", r.pos())
		r.nextToken()
		return nil
	default:
		r.errorf("unexpected token %q (%s) at %s", r.curToken.Literal, r.curToken.Type, r.pos())
		r.nextToken()
		return nil
	}
}

func (r *Reader) readList() *sexpr.List {
	list := &sexpr.List{PosVal: r.pos()}
	r.nextToken() // consume (
	for r.curToken.Type != token.RPAREN {
		if r.curToken.Type == token.EOF {
			r.errorf("unterminated list starting at %s", list.PosVal)
			return list
		}
		n := r.readForm()
		if n != nil {
			list.Items = append(list.Items, n)
		}
	}
	r.nextToken() // consume )
	return list
}
