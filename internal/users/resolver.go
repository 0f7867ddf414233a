package users

import (
	"context"

	"upboost_crm_backend/platform/apperr"
	"upboost_crm_backend/platform/config"

	"github.com/google/uuid"
)

// Store is the subset of the users repository needed by the resolver.
type Store interface {
	FindOperator(ctx context.Context, operatorEmails []string) (*User, error)
	FindFirst(ctx context.Context) (*User, error)
}

// Resolver picks the default owner for leads that arrive without one.
// Preference order: a configured operator (admin role or operator email),
// then the oldest registered user.
type Resolver struct {
	store Store
	cfg   config.OwnerConfig
}

// NewResolver creates a default-owner resolver.
func NewResolver(store Store, cfg config.OwnerConfig) *Resolver {
	return &Resolver{store: store, cfg: cfg}
}

// ResolveDefaultOwner returns the user that should own unassigned leads.
// An empty users table is a deployment fault, reported as an internal error.
func (r *Resolver) ResolveDefaultOwner(ctx context.Context) (uuid.UUID, error) {
	operator, err := r.store.FindOperator(ctx, r.cfg.GetOperatorEmails())
	if err != nil {
		return uuid.Nil, err
	}
	if operator != nil {
		return operator.ID, nil
	}

	first, err := r.store.FindFirst(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if first != nil {
		return first.ID, nil
	}

	return uuid.Nil, apperr.Internal("no users available to own incoming leads")
}
