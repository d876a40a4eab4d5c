package csp

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// validateLinearArgs aggregates every independent structural problem with a
// linear constraint's operands: when there's more than one thing wrong,
// report all of them at once rather than just the first.
func validateLinearArgs(weights []int, vars []CSPVar) error {
	var merr *multierror.Error
	if len(weights) != len(vars) {
		merr = multierror.Append(merr, fmt.Errorf("%d weights but %d variables", len(weights), len(vars)))
	}
	if len(weights) == 0 {
		merr = multierror.Append(merr, fmt.Errorf("a linear constraint needs at least one term"))
	}
	return merr.ErrorOrNil()
}

// validateAllDifferentArgs aggregates every independent structural problem
// with an all-different constraint's operands.
func validateAllDifferentArgs(vars []CSPVar) error {
	var merr *multierror.Error
	if len(vars) == 0 {
		merr = multierror.Append(merr, fmt.Errorf("PostAllDifferent requires at least one variable"))
	}
	for i, x := range vars {
		if x.hi < x.lo {
			merr = multierror.Append(merr, fmt.Errorf("variable %d has an empty domain", i))
		}
	}
	return merr.ErrorOrNil()
}

// validateElementArgs aggregates every independent structural problem with
// an element constraint's operands.
func validateElementArgs(table []int, idx CSPVar) error {
	var merr *multierror.Error
	if len(table) == 0 {
		merr = multierror.Append(merr, fmt.Errorf("PostElement requires a non-empty table"))
	}
	if idx.hi < idx.lo {
		merr = multierror.Append(merr, fmt.Errorf("index variable has an empty domain"))
	}
	return merr.ErrorOrNil()
}
