package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/rezi"
	"github.com/dekarrin/rosed"
	humanize "github.com/dustin/go-humanize"
)

// Dump is a flattened, serializable snapshot of a Tables value. It is the
// single root used both for the §6.3 human-readable listing (String) and
// for the §8 round-trip property ("dumping and re-reading the table
// produces an equivalent parser"), via MarshalBinary/UnmarshalBinary backed
// by rezi, grounded on server/dao/sqlite's use of rezi.EncBinary/DecBinary
// to round-trip the game's own State struct.
type Dump struct {
	NumStates    int
	NumTerminals int
	NumNT        int
	TermNames    []string
	NTNames      []string
	ProdStrings  []string

	// ActionKinds/ActionState/ActionProd are Action[s][t] flattened into
	// row-major order, one entry per (state, terminal) cell; a cell with no
	// action has ActionKinds == int(ActionError) and a zero state/prod.
	ActionKinds []int
	ActionState []int
	ActionProd  []int

	// GotoTargets is Goto[s][nt] flattened the same way.
	GotoTargets []int

	Unresolved int
}

// NewDump builds a Dump snapshot of t. Only the single winning action per
// cell is captured; GLR conflict cells are not round-trippable through Dump
// since the GLR driver consumes *Tables directly.
func NewDump(t *Tables) *Dump {
	g := t.Grammar
	d := &Dump{
		NumStates:    len(t.Action),
		NumTerminals: g.NumTerminals(),
		NumNT:        g.NumNonTerminals(),
		Unresolved:   t.Unresolved,
	}
	for _, sym := range g.Terminals() {
		d.TermNames = append(d.TermNames, sym.Name)
	}
	for _, sym := range g.NonTerminals() {
		d.NTNames = append(d.NTNames, sym.Name)
	}
	for _, p := range g.Productions() {
		rhsNames := make([]string, len(p.RHS))
		for i, s := range p.RHS {
			rhsNames[i] = g.Symbol(s).Name
		}
		d.ProdStrings = append(d.ProdStrings, fmt.Sprintf("%s -> %s", g.Symbol(p.LHS).Name, strings.Join(rhsNames, " ")))
	}

	for s := 0; s < d.NumStates; s++ {
		for term := 0; term < d.NumTerminals; term++ {
			cell := t.Action[s][term]
			if len(cell.Actions) == 0 {
				d.ActionKinds = append(d.ActionKinds, int(ActionError))
				d.ActionState = append(d.ActionState, 0)
				d.ActionProd = append(d.ActionProd, 0)
				continue
			}
			act := cell.Actions[0]
			d.ActionKinds = append(d.ActionKinds, int(act.Kind))
			d.ActionState = append(d.ActionState, act.State)
			d.ActionProd = append(d.ActionProd, act.Production)
		}
		for nt := 0; nt < d.NumNT; nt++ {
			d.GotoTargets = append(d.GotoTargets, t.Goto[s][nt])
		}
	}

	return d
}

// MarshalBinary encodes d with rezi, giving the §8 round-trip property a
// concrete implementation.
func (d *Dump) MarshalBinary() ([]byte, error) {
	return rezi.EncBinary(d), nil
}

// UnmarshalBinary decodes into d, overwriting its contents.
func (d *Dump) UnmarshalBinary(data []byte) error {
	_, err := rezi.DecBinary(data, d)
	return err
}

// String renders the §6.3 human-readable dump: one table of states against
// terminal actions and nonterminal gotos, followed by the production list
// and a summary line.
func (d *Dump) String() string {
	headers := []string{"S", "|"}
	for _, name := range d.TermNames {
		headers = append(headers, "A:"+name)
	}
	headers = append(headers, "|")
	for _, name := range d.NTNames {
		headers = append(headers, "G:"+name)
	}

	data := [][]string{headers}
	for s := 0; s < d.NumStates; s++ {
		row := []string{fmt.Sprintf("%d", s), "|"}
		for term := 0; term < d.NumTerminals; term++ {
			idx := s*d.NumTerminals + term
			row = append(row, cellString(ActionKind(d.ActionKinds[idx]), d.ActionState[idx], d.ActionProd[idx]))
		}
		row = append(row, "|")
		for nt := 0; nt < d.NumNT; nt++ {
			target := d.GotoTargets[s*d.NumNT+nt]
			if target < 0 {
				row = append(row, "")
			} else {
				row = append(row, fmt.Sprintf("%d", target))
			}
		}
		data = append(data, row)
	}

	table := rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()

	var b strings.Builder
	b.WriteString(table)
	b.WriteString("\n\nproductions:\n")
	for i, p := range d.ProdStrings {
		b.WriteString(fmt.Sprintf("  %d: %s\n", i, p))
	}
	b.WriteString(fmt.Sprintf("\n%s states, %s unresolved conflict(s)\n",
		humanize.Comma(int64(d.NumStates)), humanize.Comma(int64(d.Unresolved))))

	return b.String()
}

func cellString(kind ActionKind, state, prod int) string {
	switch kind {
	case ActionShift:
		return fmt.Sprintf("s%d", state)
	case ActionReduce:
		return fmt.Sprintf("r%d", prod)
	case ActionAccept:
		return "acc"
	default:
		return ""
	}
}

// ConflictListing renders the per-state conflict listing attached to an
// UnexpectedConflicts error (spec §4.4).
func ConflictListing(t *Tables) string {
	if len(t.Conflicts) == 0 {
		return ""
	}
	conflicts := make([]Conflict, len(t.Conflicts))
	copy(conflicts, t.Conflicts)
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].State != conflicts[j].State {
			return conflicts[i].State < conflicts[j].State
		}
		return conflicts[i].Terminal < conflicts[j].Terminal
	})

	var b strings.Builder
	for _, c := range conflicts {
		term := t.Grammar.Symbol(c.Terminal).Name
		fmt.Fprintf(&b, "state %d, on %q: %s conflict among", c.State, term, c.Kind)
		for i, cand := range c.Candidates {
			if i > 0 {
				b.WriteString(",")
			}
			switch cand.Kind {
			case ActionShift:
				fmt.Fprintf(&b, " shift(%d)", cand.State)
			case ActionReduce:
				fmt.Fprintf(&b, " reduce(%d)", cand.Production)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
