package payments

import (
	"fmt"

	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
)

// Registry resolves payment strategies by method name. It is assembled once
// at startup and read-only afterwards.
type Registry struct {
	strategies map[string]Strategy
	order      []string
}

// NewRegistry builds a registry from explicit strategies, rejecting
// duplicates.
func NewRegistry(strategies ...Strategy) (*Registry, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("at least one payment strategy required")
	}
	reg := &Registry{strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("nil payment strategy")
		}
		method := s.Method()
		if method == "" {
			return nil, fmt.Errorf("payment strategy with empty method")
		}
		if _, exists := reg.strategies[method]; exists {
			return nil, fmt.Errorf("duplicate payment strategy %q", method)
		}
		reg.strategies[method] = s
		reg.order = append(reg.order, method)
	}
	return reg, nil
}

// NewDefaultRegistry wires the three supported methods.
func NewDefaultRegistry() (*Registry, error) {
	return NewRegistry(
		NewCashStrategy(),
		NewCreditCardStrategy(),
		NewBankTransferStrategy(),
	)
}

// Resolve returns the strategy for a method or a validation error.
func (r *Registry) Resolve(method string) (Strategy, error) {
	s, ok := r.strategies[method]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method not supported").
			WithDetails(map[string]any{"method": method})
	}
	return s, nil
}

// Validate reports whether the method is registered.
func (r *Registry) Validate(method string) bool {
	_, ok := r.strategies[method]
	return ok
}

// Methods lists descriptors in registration order for the public endpoint.
func (r *Registry) Methods() []MethodDescriptor {
	out := make([]MethodDescriptor, 0, len(r.order))
	for _, method := range r.order {
		s := r.strategies[method]
		out = append(out, MethodDescriptor{
			Method:      s.Method(),
			DisplayName: s.DisplayName(),
			Description: s.Description(),
		})
	}
	return out
}
