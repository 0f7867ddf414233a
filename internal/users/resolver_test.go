package users

import (
	"context"
	"testing"

	"upboost_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

const gotWantFmt = "got %v, want %v"

type fakeStore struct {
	operator *User
	first    *User

	operatorEmails []string
}

func (f *fakeStore) FindOperator(_ context.Context, emails []string) (*User, error) {
	f.operatorEmails = emails
	return f.operator, nil
}

func (f *fakeStore) FindFirst(_ context.Context) (*User, error) {
	return f.first, nil
}

type fakeOwnerConfig struct {
	emails []string
}

func (f fakeOwnerConfig) GetOperatorEmails() []string { return f.emails }

func TestResolvePrefersOperator(t *testing.T) {
	operatorID := uuid.New()
	store := &fakeStore{
		operator: &User{ID: operatorID, Email: "dherick@upboost.pro", Role: RoleUser},
		first:    &User{ID: uuid.New()},
	}
	resolver := NewResolver(store, fakeOwnerConfig{emails: []string{"dherick@upboost.pro", "kelwin@upboost.com"}})

	got, err := resolver.ResolveDefaultOwner(context.Background())
	if err != nil {
		t.Fatalf("ResolveDefaultOwner: %v", err)
	}
	if got != operatorID {
		t.Errorf(gotWantFmt, got, operatorID)
	}
	if len(store.operatorEmails) != 2 {
		t.Errorf(gotWantFmt, len(store.operatorEmails), 2)
	}
}

func TestResolveFallsBackToOldestUser(t *testing.T) {
	firstID := uuid.New()
	store := &fakeStore{first: &User{ID: firstID}}
	resolver := NewResolver(store, fakeOwnerConfig{})

	got, err := resolver.ResolveDefaultOwner(context.Background())
	if err != nil {
		t.Fatalf("ResolveDefaultOwner: %v", err)
	}
	if got != firstID {
		t.Errorf(gotWantFmt, got, firstID)
	}
}

func TestResolveFailsOnEmptyUserTable(t *testing.T) {
	resolver := NewResolver(&fakeStore{}, fakeOwnerConfig{})

	_, err := resolver.ResolveDefaultOwner(context.Background())
	if err == nil {
		t.Fatal("expected error for empty user table")
	}
	if apperr.GetKind(err) != apperr.KindInternal {
		t.Errorf(gotWantFmt, apperr.GetKind(err), apperr.KindInternal)
	}
}
