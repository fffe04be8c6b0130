package actions

import "github.com/aretw0/parlance/pkg/registry"

// Action names used by RegisterDefaults.
const (
	SearchAction     = "search"
	CalculatorAction = "calculate"
)

// RegisterDefaults registers the calculator, and the search action when
// searchURL is set.
func RegisterDefaults(r *registry.Registry, searchURL string, opts ...SearchOption) {
	r.Register(CalculatorAction, NewCalculator())
	if searchURL != "" {
		r.Register(SearchAction, NewSearch(searchURL, opts...))
	}
}
