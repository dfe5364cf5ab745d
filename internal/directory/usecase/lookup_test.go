package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
)

type fakeRepo struct {
	byRole map[string][]entity.User
	byIDs  []entity.User
	err    error

	gotIDs []int64
}

func (f *fakeRepo) FindUsersByIDs(_ context.Context, ids []int64) ([]entity.User, error) {
	f.gotIDs = ids
	return f.byIDs, f.err
}

func (f *fakeRepo) FindUsersByRole(_ context.Context, role string) ([]entity.User, error) {
	return f.byRole[role], f.err
}

func (f *fakeRepo) FindUsersByCriteria(_ context.Context, _ valueobject.JSONMap) ([]entity.User, error) {
	return f.byIDs, f.err
}

func newTestLookup(repo *fakeRepo) *Lookup {
	return NewLookup(Dependency{
		RepoDB:     repo,
		Instrument: instrument.NewNoop(),
	})
}

func TestByIDsDeduplicatesInput(t *testing.T) {
	repo := &fakeRepo{byIDs: []entity.User{{ID: 1}, {ID: 2}}}

	users, err := newTestLookup(repo).ByIDs(context.Background(), []int64{1, 2, 2, 1})
	require.NoError(t, err)

	assert.Len(t, users, 2)
	assert.Equal(t, []int64{1, 2}, repo.gotIDs)
}

func TestByRoleAllIsUnionOfRoles(t *testing.T) {
	repo := &fakeRepo{byRole: map[string][]entity.User{
		RoleCustomer: {{ID: 1}, {ID: 2}},
		RoleSupplier: {{ID: 2}, {ID: 3}},
		RoleAdmin:    {{ID: 4}},
	}}

	users, err := newTestLookup(repo).ByRole(context.Background(), RoleAll)
	require.NoError(t, err)

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, ids)
}

func TestByRoleSingleRolePassesThrough(t *testing.T) {
	repo := &fakeRepo{byRole: map[string][]entity.User{
		RoleSupplier: {{ID: 9}},
	}}

	users, err := newTestLookup(repo).ByRole(context.Background(), RoleSupplier)
	require.NoError(t, err)

	require.Len(t, users, 1)
	assert.Equal(t, int64(9), users[0].ID)
}

func TestByRoleAllSurfacesRepoError(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}

	_, err := newTestLookup(repo).ByRole(context.Background(), RoleAll)
	assert.Error(t, err)
}
