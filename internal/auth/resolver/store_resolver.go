package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
	"github.com/mayasama5/upe-program-sub001/internal/store"
)

// StoreResolver is the canonical resolver, backed by a UserStore.
type StoreResolver struct {
	users store.UserStore
}

func NewStoreResolver(users store.UserStore) *StoreResolver {
	return &StoreResolver{users: users}
}

func (r *StoreResolver) ResolveProviderIdentity(
	ctx context.Context,
	identity *auth.Identity,
) (*auth.Principal, error) {

	if identity == nil || identity.SubjectID == "" {
		return nil, errors.New("identity is missing a subject")
	}

	record, err := r.users.FindByID(ctx, identity.SubjectID)
	if errors.Is(err, store.ErrNotFound) {
		record, err = r.materialize(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	return r.reconcileRole(ctx, identity, record)
}

// materialize runs first-sight provisioning: link by email when a
// record already owns the address, otherwise create one keyed by the
// provider subject id.
func (r *StoreResolver) materialize(
	ctx context.Context,
	identity *auth.Identity,
) (*store.User, error) {

	if identity.Email != "" {
		existing, err := r.users.FindByEmail(ctx, identity.Email)
		if err == nil {
			// The record keeps its original id. Rewriting it to the new
			// subject id would break every row referencing the old one.
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	role := identity.Role
	if role == "" {
		role = identity.RequestedRole
	}
	if role == "" {
		role = auth.RoleStudent
	}

	record := &store.User{
		ID:         identity.SubjectID,
		Email:      identity.Email,
		Name:       identity.Name,
		Role:       role,
		IsVerified: identity.EmailVerified,
		Picture:    identity.Picture,
	}

	err := r.users.Create(ctx, record)
	if errors.Is(err, store.ErrEmailTaken) {
		// Two first-requests for the same subject raced. The loser
		// adopts whichever record won the unique constraint.
		existing, findErr := r.users.FindByEmail(ctx, identity.Email)
		if findErr != nil {
			return nil, fmt.Errorf("refetch after create conflict: %w", findErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// reconcileRole pushes the provider's role claim into storage when it
// diverges from the stored role. The provider is the source of truth
// for role once a claim exists.
func (r *StoreResolver) reconcileRole(
	ctx context.Context,
	identity *auth.Identity,
	record *store.User,
) (*auth.Principal, error) {

	role := record.Role
	if identity.Role != "" && identity.Role != record.Role {
		if err := r.users.UpdateRole(ctx, record.ID, identity.Role); err != nil {
			return nil, fmt.Errorf("reconcile role: %w", err)
		}
		role = identity.Role
	}

	return &auth.Principal{
		SubjectID:        identity.SubjectID,
		PersistentUserID: record.ID,
		Email:            record.Email,
		DisplayName:      record.Name,
		Role:             role,
		Verified:         record.IsVerified,
	}, nil
}

func (r *StoreResolver) ResolveLocalSubject(
	ctx context.Context,
	subjectID string,
) (*auth.Principal, error) {

	record, err := r.users.FindByID(ctx, subjectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &auth.Principal{
		SubjectID:        record.ID,
		PersistentUserID: record.ID,
		Email:            record.Email,
		DisplayName:      record.Name,
		Role:             record.Role,
		Verified:         record.IsVerified,
	}, nil
}
