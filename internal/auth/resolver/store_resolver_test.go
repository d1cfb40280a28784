package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
	"github.com/mayasama5/upe-program-sub001/internal/store"
)

func seed(t *testing.T, users store.UserStore, u *store.User) {
	t.Helper()
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestProviderIdentityFirstSightCreatesRecord(t *testing.T) {
	t.Parallel()

	users := store.NewMemoryStore()
	r := NewStoreResolver(users)

	principal, err := r.ResolveProviderIdentity(context.Background(), &auth.Identity{
		SubjectID:     "prov-1",
		Email:         "nuevo@example.com",
		EmailVerified: true,
		Name:          "Nuevo Usuario",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if principal.PersistentUserID != "prov-1" {
		t.Errorf("persistent id: got %q", principal.PersistentUserID)
	}
	if principal.Role != auth.RoleStudent {
		t.Errorf("default role: got %q", principal.Role)
	}
	if !principal.Verified {
		t.Error("verified flag not carried from provider claim")
	}

	record, err := users.FindByID(context.Background(), "prov-1")
	if err != nil {
		t.Fatalf("record not materialized: %v", err)
	}
	if record.Email != "nuevo@example.com" {
		t.Errorf("record email: got %q", record.Email)
	}
}

func TestProviderIdentityRequestedRoleSeedsCreationOnly(t *testing.T) {
	t.Parallel()

	users := store.NewMemoryStore()
	r := NewStoreResolver(users)

	principal, err := r.ResolveProviderIdentity(context.Background(), &auth.Identity{
		SubjectID:     "prov-co",
		Email:         "rrhh@empresa.com",
		RequestedRole: auth.RoleCompany,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.Role != auth.RoleCompany {
		t.Errorf("role: got %q, want empresa", principal.Role)
	}

	// A later login requesting a different role must not change the record.
	principal, err = r.ResolveProviderIdentity(context.Background(), &auth.Identity{
		SubjectID:     "prov-co",
		Email:         "rrhh@empresa.com",
		RequestedRole: auth.RoleStudent,
	})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if principal.Role != auth.RoleCompany {
		t.Errorf("requested role overwrote stored role: got %q", principal.Role)
	}
}

func TestProviderIdentityEmailFallbackKeepsOriginalID(t *testing.T) {
	t.Parallel()

	users := store.NewMemoryStore()
	seed(t, users, &store.User{
		ID:    "local-7",
		Email: "ana@example.com",
		Role:  auth.RoleStudent,
	})
	r := NewStoreResolver(users)

	principal, err := r.ResolveProviderIdentity(context.Background(), &auth.Identity{
		SubjectID: "prov-new",
		Email:     "ANA@example.com", // matching is case-insensitive
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if principal.PersistentUserID != "local-7" {
		t.Errorf("persistent id: got %q, want the pre-existing local-7", principal.PersistentUserID)
	}
	if principal.SubjectID != "prov-new" {
		t.Errorf("subject id: got %q", principal.SubjectID)
	}
	if _, err := users.FindByID(context.Background(), "prov-new"); !errors.Is(err, store.ErrNotFound) {
		t.Error("a duplicate record was created for the provider subject")
	}
}

func TestProviderIdentityRoleReconciliation(t *testing.T) {
	t.Parallel()

	users := store.NewMemoryStore()
	seed(t, users, &store.User{
		ID:    "prov-9",
		Email: "pedro@example.com",
		Role:  auth.RoleStudent,
	})
	r := NewStoreResolver(users)

	principal, err := r.ResolveProviderIdentity(context.Background(), &auth.Identity{
		SubjectID: "prov-9",
		Email:     "pedro@example.com",
		Role:      auth.RoleCompany,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if principal.Role != auth.RoleCompany {
		t.Errorf("principal role: got %q, want empresa", principal.Role)
	}
	record, err := users.FindByID(context.Background(), "prov-9")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record.Role != auth.RoleCompany {
		t.Errorf("stored role not reconciled: got %q", record.Role)
	}
}

func TestProviderIdentityConcurrentFirstSightIsIdempotent(t *testing.T) {
	t.Parallel()

	users := store.NewMemoryStore()
	r := NewStoreResolver(users)

	identity := func() *auth.Identity {
		return &auth.Identity{
			SubjectID: "prov-race",
			Email:     "race@example.com",
		}
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	principals := make([]*auth.Principal, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			principals[i], errs[i] = r.ResolveProviderIdentity(context.Background(), identity())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if principals[i].PersistentUserID != "prov-race" {
			t.Errorf("worker %d resolved to %q", i, principals[i].PersistentUserID)
		}
	}

	if _, err := users.FindByEmail(context.Background(), "race@example.com"); err != nil {
		t.Fatalf("expected exactly one record: %v", err)
	}
}

func TestResolveLocalSubject(t *testing.T) {
	t.Parallel()

	users := store.NewMemoryStore()
	seed(t, users, &store.User{
		ID:         "local-1",
		Email:      "maria@example.com",
		Name:       "Maria",
		Role:       auth.RoleCompany,
		IsVerified: true,
	})
	r := NewStoreResolver(users)

	principal, err := r.ResolveLocalSubject(context.Background(), "local-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.Role != auth.RoleCompany || !principal.Verified {
		t.Errorf("principal: %+v", principal)
	}

	if _, err := r.ResolveLocalSubject(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound (local path never provisions)", err)
	}
}
