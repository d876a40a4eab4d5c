// Package parsers loads DIMACS CNF instances and model files against the
// solver's Boolean layer. Flatzinc/XCSP front-ends are out of scope; this
// package exists so the CLI's --dimacs mode can exercise BCP and conflict
// analysis directly, independently of the integer-variable encoding built
// on top of it.
package parsers

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"

	"github.com/go-lcg/lcg/internal/sat"
)

// CNFTarget is the subset of the embedding interface DIMACS loading needs.
type CNFTarget interface {
	AddVariable() int
	AddClause(lits []sat.Literal)
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(f)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file and loads its formula into target.
func LoadDIMACS(filename string, gzipped bool, target CNFTarget) error {
	r, err := reader(filename, gzipped)
	if err != nil {
		return fmt.Errorf("parsers: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &cnfBuilder{target: target}
	return dimacs.ReadBuilder(r, b)
}

// cnfBuilder adapts a CNFTarget to the rhartert/dimacs Builder interface.
type cnfBuilder struct {
	target CNFTarget
}

func (b *cnfBuilder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("parsers: unsupported problem type %q", problem)
	}
	for i := 0; i < nVars; i++ {
		b.target.AddVariable()
	}
	return nil
}

func (b *cnfBuilder) Clause(tmpClause []int) error {
	clause := make([]sat.Literal, len(tmpClause))
	for i, l := range tmpClause {
		if l < 0 {
			clause[i] = sat.NegativeLiteral(-l - 1)
		} else {
			clause[i] = sat.PositiveLiteral(l - 1)
		}
	}
	b.target.AddClause(clause)
	return nil
}

func (b *cnfBuilder) Comment(_ string) error {
	return nil
}

// ReadModels returns the (possibly empty) list of models contained in a
// DIMACS-style model file: one clause per line, one model per clause, using
// the same literal convention as an instance file (positive = true).
func ReadModels(filename string) ([][]bool, error) {
	r, err := reader(filename, false)
	if err != nil {
		return nil, fmt.Errorf("parsers: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, err
	}
	return b.models, nil
}

type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return fmt.Errorf("parsers: model files should not have a problem line")
}

func (b *modelBuilder) Comment(_ string) error { return nil }

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
