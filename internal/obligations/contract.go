package obligations

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/flowgraph/core/internal/typesystem"
)

// contractPredicates gives each closed ValueContract its runtime
// meaning as an expr-lang boolean expression over a single "value"
// variable. ContractNone has no predicate: it asserts nothing.
var contractPredicates = map[typesystem.ValueContract]string{
	typesystem.ContractClamp01: "value >= 0 && value <= 1",
	typesystem.ContractClamp11: "value >= -1 && value <= 1",
	typesystem.ContractWrap01:  "value >= 0 && value < 1",
}

// Predicate is a compiled contract check ready to run against sample
// values.
type Predicate struct {
	contract typesystem.ValueContract
	program  *vm.Program
}

var (
	predicateCacheMu sync.RWMutex
	predicateCache   = make(map[typesystem.ValueContract]*Predicate)
)

// CompilePredicate compiles contract's runtime meaning, following the
// same compile-with-env-then-fall-back-without-env pattern used to
// evaluate conditional edges elsewhere in this codebase. Compiled
// predicates are cached since every block declaring the same contract
// shares one program.
func CompilePredicate(contract typesystem.ValueContract) (*Predicate, error) {
	if contract == typesystem.ContractNone {
		return &Predicate{contract: contract}, nil
	}

	predicateCacheMu.RLock()
	cached, ok := predicateCache[contract]
	predicateCacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	expression, ok := contractPredicates[contract]
	if !ok {
		return nil, fmt.Errorf("obligations: no runtime predicate registered for contract %q", contract)
	}

	envType := map[string]interface{}{"value": 0.0}
	program, err := expr.Compile(expression, expr.Env(envType), expr.AsBool())
	if err != nil {
		program, err = expr.Compile(expression, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("obligations: failed to compile contract %q predicate %q: %w", contract, expression, err)
		}
	}

	p := &Predicate{contract: contract, program: program}
	predicateCacheMu.Lock()
	predicateCache[contract] = p
	predicateCacheMu.Unlock()
	return p, nil
}

// Evaluate runs the predicate against value, returning true if value
// upholds the contract. A contract of ContractNone always holds.
func (p *Predicate) Evaluate(value float64) (bool, error) {
	if p.program == nil {
		return true, nil
	}
	result, err := expr.Run(p.program, map[string]interface{}{"value": value})
	if err != nil {
		return false, fmt.Errorf("obligations: failed to evaluate contract %q against value %v: %w", p.contract, value, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("obligations: contract %q predicate returned non-bool result %v", p.contract, result)
	}
	return ok, nil
}
