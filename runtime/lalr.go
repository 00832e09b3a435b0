// Package runtime implements the Runtime Driver (spec §4.7, G): the LALR
// stack machine that interprets a *table.Tables against a caller-supplied
// lexer, plus the error-recovery discipline of spec §4.6.
//
// Grounded on the teacher's internal/ictiobus/parse/lr.go's lrParser.Parse
// (Algorithm 4.44 from the purple dragon book), adapted from its
// string-keyed table/util.Stack[string] shape to the dense int states and
// table.Tables this engine builds, and from parse-tree construction to
// opaque semantic-value reduction (spec §9, "the core must not peek
// inside").
package runtime

import (
	"fmt"
	"strings"

	"github.com/dekarrin/lalrgen/errs"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/internal/util"
	"github.com/dekarrin/lalrgen/table"
	"github.com/dekarrin/lalrgen/token"
)

// TraceFunc receives human-readable progress lines during a parse, mirroring
// the teacher's RegisterTraceListener hooks rather than a logging library.
type TraceFunc func(line string)

// LALR is a deterministic LALR(1) parser bound to one Tables value.
type LALR struct {
	Tables *table.Tables

	trace TraceFunc
}

// NewLALR binds tbl to a new driver. tbl must have been built without the
// GLR option (every cell holds at most one action).
func NewLALR(tbl *table.Tables) *LALR {
	return &LALR{Tables: tbl}
}

// RegisterTraceListener installs fn to receive progress lines during Parse,
// or clears it if fn is nil.
func (p *LALR) RegisterTraceListener(fn TraceFunc) {
	p.trace = fn
}

func (p *LALR) notify(format string, args ...interface{}) {
	if p.trace == nil {
		return
	}
	p.trace(fmt.Sprintf(format, args...))
}

// Parse drives the LALR stack machine (spec §4.7) over the tokens lexer
// produces, invoking onError per the §6.2 contract and recovering from
// syntax errors per §4.6 when the grammar has *error* productions. It
// returns the semantic value accumulated at the accept action.
func (p *LALR) Parse(lexer token.Lexer, onError token.OnError) (interface{}, error) {
	g := p.Tables.Grammar

	states := util.Stack[int]{Of: []int{0}}
	values := util.Stack[interface{}]{}

	tok := lexer()
	p.notify("next token: %s", tok.String())

	for {
		s := states.Peek()
		term, ok := g.TerminalID(tok.Category)
		if !ok {
			return nil, errs.Syntax("unrecognized token category \""+tok.Category+"\"", tok)
		}

		cell := p.Tables.Action[s][term]
		if len(cell.Actions) == 0 {
			recovered, recErr := p.recover(&states, &values, g, &tok, lexer, onError)
			if !recovered {
				return nil, recErr
			}
			continue
		}

		act := cell.Actions[0]
		p.notify("state %d, on %q: %s", s, tok.Category, act.Kind)

		switch act.Kind {
		case table.ActionShift:
			values.Push(tok.Value)
			states.Push(act.State)
			tok = lexer()
			p.notify("next token: %s", tok.String())

		case table.ActionReduce:
			prod := g.Production(act.Production)
			children := make([]interface{}, len(prod.RHS))
			for i := len(prod.RHS) - 1; i >= 0; i-- {
				states.Pop()
				children[i] = values.Pop()
			}

			var reduced interface{}
			var err error
			if prod.Action != nil {
				reduced, err = prod.Action(children)
				if err != nil {
					return nil, err
				}
			}

			top := states.Peek()
			gotoState := p.Tables.Goto[top][prod.LHS-g.NumTerminals()]
			if gotoState < 0 {
				return nil, errs.New(errs.KindUnrecoverableSyntaxError, "no goto defined from state %d on %q", top, g.Symbol(prod.LHS).Name)
			}
			states.Push(gotoState)
			values.Push(reduced)

		case table.ActionAccept:
			return values.Peek(), nil

		case table.ActionError:
			recovered, recErr := p.recover(&states, &values, g, &tok, lexer, onError)
			if !recovered {
				return nil, recErr
			}
		}
	}
}

// recover implements spec §4.6's error-recovery discipline: pop states
// until one has a defined shift on *error*, push it, then discard tokens
// until the synchronization terminal (or *eoi*). The synchronization
// terminal is the one following *error* in the grammar's first error
// production, whichever error production the recovery state belongs to. It
// reports a single error to onError per episode and returns false if no
// recovery state could be found.
func (p *LALR) recover(states *util.Stack[int], values *util.Stack[interface{}], g *grammar.Grammar, tok *token.Token, lexer token.Lexer, onError token.OnError) (bool, error) {
	message := p.expectedMessage(states.Peek(), *tok)
	onError(message, tok)

	errTerm := g.ErrorTerminal()
	syncTerm := syncTerminalFollowingError(g)

	for {
		s := states.Peek()
		cell := p.Tables.Action[s][errTerm]
		if len(cell.Actions) == 1 && cell.Actions[0].Kind == table.ActionShift {
			states.Push(cell.Actions[0].State)
			values.Push(nil)
			break
		}
		if states.Len() == 1 {
			return false, errs.Unrecoverable("no state to resynchronize on after syntax error", *tok)
		}
		states.Pop()
		values.Pop()
	}

	for {
		if tok.Category == token.EOI {
			return true, nil
		}
		if syncTerm != -1 {
			if id, ok := g.TerminalID(tok.Category); ok && id == syncTerm {
				shiftSync(states, values, p.Tables, syncTerm, *tok)
				*tok = lexer()
				return true, nil
			}
		}
		*tok = lexer()
	}
}

// shiftSync advances the parser past the synchronization token itself, so
// the main loop resumes on the token that follows it.
func shiftSync(states *util.Stack[int], values *util.Stack[interface{}], tbl *table.Tables, syncTerm int, tok token.Token) {
	s := states.Peek()
	cell := tbl.Action[s][syncTerm]
	if len(cell.Actions) == 1 && cell.Actions[0].Kind == table.ActionShift {
		values.Push(tok.Value)
		states.Push(cell.Actions[0].State)
	}
}

// syncTerminalFollowingError returns the id of the terminal that follows
// *error* in the grammar's (first) error production, or -1 if there is none.
func syncTerminalFollowingError(g *grammar.Grammar) int {
	errTerm := g.ErrorTerminal()
	for _, p := range g.Productions() {
		for i, sym := range p.RHS {
			if sym == errTerm && i+1 < len(p.RHS) {
				return p.RHS[i+1]
			}
		}
	}
	return -1
}

// expectedMessage builds a human-readable "unexpected X; expected a Y, Z or
// W" message, grounded on the teacher's lrParser.getExpectedString.
func (p *LALR) expectedMessage(state int, tok token.Token) string {
	g := p.Tables.Grammar
	var expected []string
	for _, sym := range g.Terminals() {
		if sym.ID == g.ErrorTerminal() {
			continue
		}
		if len(p.Tables.Action[state][sym.ID].Actions) > 0 {
			expected = append(expected, sym.Name)
		}
	}

	var b strings.Builder
	b.WriteString("unexpected ")
	b.WriteString(tok.Category)
	if len(expected) > 0 {
		b.WriteString("; expected ")
		for i, name := range expected {
			if i > 0 {
				if i == len(expected)-1 {
					b.WriteString(" or ")
				} else {
					b.WriteString(", ")
				}
			}
			if i == 0 {
				b.WriteString(util.ArticleFor(name, false))
				b.WriteString(" ")
			}
			b.WriteString(name)
		}
	}
	return b.String()
}
