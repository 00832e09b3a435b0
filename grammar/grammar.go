// Package grammar implements Grammar Intake (spec §4.1): it validates a
// structured-data description of terminals, precedence groups, and
// nonterminal rule groups, assigns the dense numeric ids the rest of the
// engine depends on, and prepends the augmented start production.
//
// The API shape (an incrementally-built value type validated at the end)
// follows the teacher's internal/ictiobus/grammar package, whose own
// grammar.go was filtered from the retrieval pack but whose grammar_test.go
// shows a Grammar built via AddTerm/AddRule and then finalized.
package grammar

import (
	"fmt"
	"sort"

	"github.com/dekarrin/lalrgen/errs"
	"github.com/dekarrin/lalrgen/internal/util"
)

// Kind identifies what a Symbol represents.
type Kind int

const (
	Terminal Kind = iota
	NonTerminal
	Pseudo
)

// Assoc is the associativity of a precedence group.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonAssoc:
		return "nonassoc"
	default:
		return "none"
	}
}

// Symbol is a tagged grammar symbol, per spec §3.
type Symbol struct {
	Kind       Kind
	ID         int
	Name       string
	Precedence *int
	Assoc      Assoc
}

// ActionFunc is the opaque semantic action attached to a production. The
// core never inspects argument or return shapes (spec §9, "the core must
// not peek inside"); it only invokes it with the semantic values collected
// from the reduced symbols, in left-to-right order.
type ActionFunc func(children []interface{}) (interface{}, error)

// Production is a single grammar rule, per spec §3.
type Production struct {
	ID         int
	LHS        int // nonterminal symbol id
	RHS        []int
	Action     ActionFunc
	Precedence *int
}

// Equal compares productions by LHS/RHS shape only, ignoring Action.
func (p Production) Equal(o Production) bool {
	if p.LHS != o.LHS || len(p.RHS) != len(o.RHS) {
		return false
	}
	for i := range p.RHS {
		if p.RHS[i] != o.RHS[i] {
			return false
		}
	}
	return true
}

// Grammar is the immutable bundle Intake produces. Once built it is never
// mutated (spec §3 Lifecycle).
type Grammar struct {
	terminals    []Symbol // indexed by id [0, T)
	nonterminals []Symbol // indexed by id-T, i.e. nonterminals[id-T]
	productions  []Production
	firstProdOf  map[int][]int

	numTerminals    int
	errorTerminal   int
	startSymbol     int // user start nonterminal id (S)
	augStartSymbol  int // synthetic S' nonterminal id
	augProductionID int // production id of S' -> S *eoi*

	warnings []Warning
}

// WarningKind identifies a category of non-fatal grammar diagnostic: one
// that doesn't prevent table construction, but that a production-grade
// Intake still surfaces to the caller.
type WarningKind int

const (
	// WarningUnreachableProduction flags a production whose left-hand side
	// can never be derived starting from the grammar's start symbol.
	WarningUnreachableProduction WarningKind = iota

	// WarningUselessNonTerminal flags a nonterminal that can never be
	// reduced to, because none of its productions can ever derive a finite
	// string of terminals (each bottoms out in another such nonterminal).
	WarningUselessNonTerminal
)

func (k WarningKind) String() string {
	switch k {
	case WarningUnreachableProduction:
		return "UnreachableProduction"
	case WarningUselessNonTerminal:
		return "UselessNonTerminal"
	default:
		return "UnknownWarning"
	}
}

// Warning is one non-fatal diagnostic attached to a Grammar by Intake.
// Production is only meaningful for WarningUnreachableProduction; it is -1
// otherwise.
type Warning struct {
	Kind       WarningKind
	Symbol     string
	Production int
}

// String renders a human-readable description of the warning, the form
// cmd/lalrgen prints.
func (w Warning) String() string {
	switch w.Kind {
	case WarningUnreachableProduction:
		return fmt.Sprintf("production %d for %q is unreachable from the start symbol", w.Production, w.Symbol)
	case WarningUselessNonTerminal:
		return fmt.Sprintf("nonterminal %q is useless: it can never be reduced to", w.Symbol)
	default:
		return fmt.Sprintf("unknown warning regarding %q", w.Symbol)
	}
}

// Warnings returns every non-fatal diagnostic Intake found: unreachable
// productions and useless nonterminals (spec §4.1 and the grammar
// validation diagnostics vartan's grammar.go/lr0.go perform beyond the four
// named error kinds). Table construction proceeds regardless; these are
// informational only.
func (g *Grammar) Warnings() []Warning { return g.warnings }

// NumTerminals returns |terminals| (T in spec §3's id ranges).
func (g *Grammar) NumTerminals() int { return g.numTerminals }

// NumNonTerminals returns |nonterminals| (N in spec §3's id ranges).
func (g *Grammar) NumNonTerminals() int { return len(g.nonterminals) }

// IsTerminal returns whether id names a terminal.
func (g *Grammar) IsTerminal(id int) bool { return id >= 0 && id < g.numTerminals }

// IsNonTerminal returns whether id names a nonterminal (including S').
func (g *Grammar) IsNonTerminal(id int) bool {
	return id >= g.numTerminals && id < g.numTerminals+len(g.nonterminals)
}

// Symbol returns the Symbol for id, which may be a terminal or nonterminal
// id.
func (g *Grammar) Symbol(id int) Symbol {
	if g.IsTerminal(id) {
		return g.terminals[id]
	}
	return g.nonterminals[id-g.numTerminals]
}

// Terminals returns all terminal symbols in id order, including *eoi* and
// *error*.
func (g *Grammar) Terminals() []Symbol { return g.terminals }

// TerminalID looks up a terminal's id by name, as the runtime drivers do
// when resolving a lexical token's category against the grammar.
func (g *Grammar) TerminalID(name string) (int, bool) {
	for _, sym := range g.terminals {
		if sym.Name == name {
			return sym.ID, true
		}
	}
	return 0, false
}

// NonTerminals returns all nonterminal symbols in id order, including the
// synthetic S'.
func (g *Grammar) NonTerminals() []Symbol { return g.nonterminals }

// Productions returns all productions in id order; production 0 is always
// the augmented start S' -> S *eoi*.
func (g *Grammar) Productions() []Production { return g.productions }

// Production returns the production with the given id.
func (g *Grammar) Production(id int) Production { return g.productions[id] }

// ProductionsOf returns the ids of every production whose LHS is nt, in
// declaration order.
func (g *Grammar) ProductionsOf(nt int) []int { return g.firstProdOf[nt] }

// StartSymbol returns the id of the user-declared start nonterminal S (not
// the augmented S').
func (g *Grammar) StartSymbol() int { return g.startSymbol }

// AugmentedStart returns the id of the synthetic start nonterminal S'.
func (g *Grammar) AugmentedStart() int { return g.augStartSymbol }

// AugmentedProduction returns the id of the production S' -> S *eoi*, always
// 0.
func (g *Grammar) AugmentedProduction() int { return g.augProductionID }

// EOI returns the id of the reserved *eoi* terminal, always 0.
func (g *Grammar) EOI() int { return 0 }

// ErrorTerminal returns the id of the reserved *error* terminal.
func (g *Grammar) ErrorTerminal() int { return g.errorTerminal }

// --- Intake / Builder ---

// TerminalDecl declares one terminal symbol.
type TerminalDecl struct {
	Name string
}

// PrecGroup declares a precedence level shared by a set of terminals, with a
// single associativity. Groups are processed left to right (spec §4.1);
// each assigns the next integer precedence level.
type PrecGroup struct {
	Assoc     Assoc
	Terminals []string
}

// ProductionDecl is one alternative of a rule.
type ProductionDecl struct {
	RHS []string

	// Action is the semantic action payload for this alternative.
	Action ActionFunc

	// Prec, if non-empty, names the terminal whose precedence this
	// production should take on, overriding the "last terminal in rhs"
	// default (spec §4.1, "prec:" argument).
	Prec string
}

// RuleDecl declares every alternative for one nonterminal. The first
// RuleDecl passed to NewGrammar names the start symbol (spec §4.1).
type RuleDecl struct {
	NonTerminal string
	Productions []ProductionDecl
}

// NewGrammar runs Grammar Intake (spec §4.1) over structured declarations
// and returns the resulting immutable Grammar, or one of the errs.Kind
// errors documented in spec §7.
func NewGrammar(terminalDecls []TerminalDecl, precGroups []PrecGroup, rules []RuleDecl) (*Grammar, error) {
	if len(rules) == 0 {
		return nil, errs.New(errs.KindEmptyGrammar, "grammar has no nonterminal rules")
	}

	termID := map[string]int{}
	var terminals []Symbol

	declare := func(name string) error {
		if _, ok := termID[name]; ok {
			return errs.New(errs.KindDuplicateTerminal, "terminal %q declared more than once", name)
		}
		id := len(terminals)
		termID[name] = id
		terminals = append(terminals, Symbol{Kind: Terminal, ID: id, Name: name})
		return nil
	}

	// id 0 is always *eoi*; the reserved *error* terminal gets the next id.
	if err := declare("*eoi*"); err != nil {
		return nil, err
	}
	if err := declare("*error*"); err != nil {
		return nil, err
	}
	errorTerminalID := termID["*error*"]

	for _, td := range terminalDecls {
		if td.Name == "*eoi*" || td.Name == "*error*" {
			return nil, errs.New(errs.KindDuplicateTerminal, "terminal name %q is reserved", td.Name)
		}
		if err := declare(td.Name); err != nil {
			return nil, err
		}
	}

	// precedence groups may introduce terminals not yet seen (mirrors yacc's
	// %left/%right declaring tokens inline), so declare on first sight.
	nextPrec := 1
	for _, grp := range precGroups {
		prec := nextPrec
		nextPrec++
		for _, name := range grp.Terminals {
			id, ok := termID[name]
			if !ok {
				if err := declare(name); err != nil {
					return nil, err
				}
				id = termID[name]
			}
			p := prec
			terminals[id].Precedence = &p
			terminals[id].Assoc = grp.Assoc
		}
	}

	ntID := map[string]int{}
	numTerminals := len(terminals)
	var nonterminals []Symbol
	declareNT := func(name string) int {
		if id, ok := ntID[name]; ok {
			return id
		}
		id := numTerminals + len(nonterminals)
		ntID[name] = id
		nonterminals = append(nonterminals, Symbol{Kind: NonTerminal, ID: id, Name: name})
		return id
	}

	startName := rules[0].NonTerminal
	for _, r := range rules {
		declareNT(r.NonTerminal)
	}
	startSym := ntID[startName]

	// resolve rhs symbols; collect productions and check for undefined
	// symbols only after every nonterminal has been declared, since rhs
	// occurrences may forward-reference a rule declared later.
	resolve := func(name string) (id int, isTerm bool, ok bool) {
		if id, ok := termID[name]; ok {
			return id, true, true
		}
		if id, ok := ntID[name]; ok {
			return id, false, true
		}
		return 0, false, false
	}

	var productions []Production
	firstProdOf := map[int][]int{}

	addProduction := func(lhs int, lhsName string, decl ProductionDecl) error {
		rhs := make([]int, 0, len(decl.RHS))
		var undefined []string
		var lastTermPrec *int
		for _, symName := range decl.RHS {
			id, isTerm, ok := resolve(symName)
			if !ok {
				undefined = append(undefined, fmt.Sprintf("%q", symName))
				continue
			}
			rhs = append(rhs, id)
			if isTerm {
				// track the literal rightmost terminal's precedence, even if
				// it has none: a later terminal with no precedence group
				// must erase an earlier terminal's, not inherit it.
				lastTermPrec = terminals[id].Precedence
			}
		}
		if len(undefined) > 0 {
			return errs.New(errs.KindUndefinedSymbol, "undefined symbol(s) %s in production for %q", util.MakeTextList(undefined), lhsName)
		}

		prec := lastTermPrec
		if decl.Prec != "" {
			id, isTerm, ok := resolve(decl.Prec)
			if !ok || !isTerm {
				return errs.New(errs.KindIllFormedProduction, "prec: %q does not name a declared terminal", decl.Prec)
			}
			prec = terminals[id].Precedence
		}

		p := Production{
			ID:         len(productions),
			LHS:        lhs,
			RHS:        rhs,
			Action:     decl.Action,
			Precedence: prec,
		}
		productions = append(productions, p)
		firstProdOf[lhs] = append(firstProdOf[lhs], p.ID)
		return nil
	}

	// production 0 is always the augmented start S' -> S *eoi*.
	augStart := declareNT("S'")
	if err := addProduction(augStart, "S'", ProductionDecl{RHS: []string{startName, "*eoi*"}}); err != nil {
		return nil, err
	}

	for _, r := range rules {
		lhs := ntID[r.NonTerminal]
		if len(r.Productions) == 0 {
			return nil, errs.New(errs.KindIllFormedProduction, "nonterminal %q has no productions", r.NonTerminal)
		}
		for _, decl := range r.Productions {
			if err := addProduction(lhs, r.NonTerminal, decl); err != nil {
				return nil, err
			}
		}
	}

	if err := validateErrorRules(productions, terminals, errorTerminalID); err != nil {
		return nil, err
	}

	g := &Grammar{
		terminals:       terminals,
		nonterminals:    nonterminals,
		productions:     productions,
		firstProdOf:     firstProdOf,
		numTerminals:    numTerminals,
		errorTerminal:   errorTerminalID,
		startSymbol:     startSym,
		augStartSymbol:  augStart,
		augProductionID: 0,
	}
	g.warnings = diagnose(g)

	return g, nil
}

// diagnose computes the two validation diagnostics beyond the four named
// error kinds (spec §4.1): unreachable productions and useless
// nonterminals. Grounded on vartan's findUsedAndUnusedSymbols
// (other_examples' nihei9-vartan grammar.go), which marks symbols reachable
// from the start production by a work-list traversal of production.go
// bodies; useless-ness (can this nonterminal ever derive a finite string of
// terminals) is the complementary fixpoint vartan does not compute, added
// here since spec §4.1's table construction assumes every nonterminal can
// be reduced to.
func diagnose(g *Grammar) []Warning {
	numSyms := g.numTerminals + len(g.nonterminals)

	reachable := make([]bool, numSyms)
	reachable[g.startSymbol] = true
	work := []int{g.startSymbol}
	for len(work) > 0 {
		nt := work[0]
		work = work[1:]
		if !g.IsNonTerminal(nt) {
			continue
		}
		for _, prodID := range g.ProductionsOf(nt) {
			for _, sym := range g.Production(prodID).RHS {
				if !reachable[sym] {
					reachable[sym] = true
					work = append(work, sym)
				}
			}
		}
	}

	generates := make([]bool, numSyms)
	for t := 0; t < g.numTerminals; t++ {
		generates[t] = true
	}
	for changed := true; changed; {
		changed = false
		for _, p := range g.productions {
			if generates[p.LHS] {
				continue
			}
			allGenerate := true
			for _, sym := range p.RHS {
				if !generates[sym] {
					allGenerate = false
					break
				}
			}
			if allGenerate {
				generates[p.LHS] = true
				changed = true
			}
		}
	}

	var warnings []Warning
	for _, p := range g.productions {
		if p.ID == g.augProductionID {
			continue
		}
		if !reachable[p.LHS] {
			warnings = append(warnings, Warning{
				Kind:       WarningUnreachableProduction,
				Symbol:     g.Symbol(p.LHS).Name,
				Production: p.ID,
			})
		}
	}
	for _, nt := range g.nonterminals {
		if nt.ID == g.augStartSymbol {
			continue
		}
		if reachable[nt.ID] && !generates[nt.ID] {
			warnings = append(warnings, Warning{
				Kind:       WarningUselessNonTerminal,
				Symbol:     nt.Name,
				Production: -1,
			})
		}
	}

	return warnings
}

// validateErrorRules enforces that *error* may only appear as a rhs symbol
// followed immediately by its synchronization terminal, per spec §4.6.
func validateErrorRules(productions []Production, terminals []Symbol, errorTerminalID int) error {
	for _, p := range productions {
		for i, sym := range p.RHS {
			if sym != errorTerminalID {
				continue
			}
			if i == len(p.RHS)-1 {
				return errs.New(errs.KindIllFormedProduction, "production %d: *error* must be followed by a synchronization terminal", p.ID)
			}
			syncSym := p.RHS[i+1]
			if syncSym >= len(terminals) {
				return errs.New(errs.KindIllFormedProduction, "production %d: symbol following *error* must be a terminal", p.ID)
			}
		}
	}
	return nil
}

// String renders g's productions for debugging, one per line, in the shape
// "id: LHS -> s1 s2 s3".
func (g *Grammar) String() string {
	lines := make([]string, 0, len(g.productions))
	for _, p := range g.productions {
		lines = append(lines, fmt.Sprintf("%d: %s", p.ID, g.productionString(p)))
	}
	return fmt.Sprintf("%v", lines)
}

func (g *Grammar) productionString(p Production) string {
	rhsNames := make([]string, len(p.RHS))
	for i, s := range p.RHS {
		rhsNames[i] = g.Symbol(s).Name
	}
	return fmt.Sprintf("%s -> %v", g.Symbol(p.LHS).Name, rhsNames)
}

// Nullable computes, for every nonterminal, whether it can derive the empty
// string. This is the least fixpoint required by the Includes relation
// (spec §4.3): N is nullable iff some production of N has every rhs symbol
// nullable (a nonterminal with an empty rhs is trivially nullable).
func (g *Grammar) Nullable() map[int]bool {
	nullable := map[int]bool{}
	changed := true
	for changed {
		changed = false
		for _, p := range g.productions {
			if nullable[p.LHS] {
				continue
			}
			allNullable := true
			for _, sym := range p.RHS {
				if g.IsTerminal(sym) || !nullable[sym] {
					allNullable = false
					break
				}
			}
			if allNullable {
				nullable[p.LHS] = true
				changed = true
			}
		}
	}
	return nullable
}

// StripProductions returns a new Grammar retaining only the productions for
// which keep returns true (the augmented start production is always kept
// regardless of keep, since every Grammar must have exactly one). Production
// ids are renumbered to stay dense and contiguous. Used by the GLR
// extension to strip error-recovery productions before construction (spec
// §4.5), since error productions have no meaning in the GLR driver's
// reducer protocol.
func (g *Grammar) StripProductions(keep func(Production) bool) *Grammar {
	var kept []Production
	firstProdOf := map[int][]int{}
	for _, p := range g.productions {
		if p.ID != g.augProductionID && !keep(p) {
			continue
		}
		np := p
		np.ID = len(kept)
		kept = append(kept, np)
		firstProdOf[np.LHS] = append(firstProdOf[np.LHS], np.ID)
	}

	ng := *g
	ng.productions = kept
	ng.firstProdOf = firstProdOf
	ng.augProductionID = 0
	return &ng
}

// SortedTerminalIDs returns every terminal id in ascending order, a
// convenience used when iterating for table construction.
func (g *Grammar) SortedTerminalIDs() []int {
	ids := make([]int, g.numTerminals)
	for i := range ids {
		ids[i] = i
	}
	sort.Ints(ids)
	return ids
}
