package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/txdao/internal/domain"
	"github.com/vbonduro/txdao/internal/testutil"
	"github.com/vbonduro/txdao/internal/unitofwork"
)

func newStores(t *testing.T) (*unitofwork.Executor, *sql.DB) {
	t.Helper()
	return testutil.NewExecutor(t)
}

func TestAccountStoreSave(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	a := &domain.Account{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, store.Save(ctx, a))

	assert.NotZero(t, a.ID)
	assert.False(t, a.CreationTime.IsZero())

	found, err := store.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ada", found.FirstName)
	assert.Equal(t, "ada@example.com", found.Email)
}

func TestAccountStoreSaveRejectsInvalid(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, store.Save(ctx, &domain.Account{ID: 3, Email: "x@example.com"}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, store.Save(ctx, &domain.Account{}), domain.ErrInvalidArgument)
	assert.Zero(t, exec.OpenSessions())
}

func TestAccountStoreSaveDuplicateEmail(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Account{Email: "dup@example.com"}))

	second := &domain.Account{Email: "dup@example.com"}
	err := store.Save(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	assert.Zero(t, second.ID, "identifier must not be assigned when the save failed")

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAccountStoreFindByID_NotFound(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)

	found, err := store.FindByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAccountStoreFindByEmail(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	a := &domain.Account{Email: "grace@example.com"}
	require.NoError(t, store.Save(ctx, a))

	found, err := store.FindByEmail(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestAccountStoreFindByEmail_NotFound(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)

	_, err := store.FindByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var opErr *unitofwork.OperationError
	assert.ErrorAs(t, err, &opErr)
}

func TestAccountStoreFindAllIsStable(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, store.Save(ctx, &domain.Account{Email: fmt.Sprintf("u%d@example.com", i)}))
	}

	first, err := store.FindAll(ctx)
	require.NoError(t, err)
	second, err := store.FindAll(ctx)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Less(t, first[0].ID, first[1].ID)
}

func TestAccountStoreFindAllEmpty(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)

	all, err := store.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestAccountStoreUpdate(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	a := &domain.Account{Email: "old@example.com"}
	require.NoError(t, store.Save(ctx, a))
	created := a.CreationTime

	detached := &domain.Account{ID: a.ID, FirstName: "New", Email: "new@example.com"}
	require.NoError(t, store.Update(ctx, detached))
	assert.Equal(t, created, detached.CreationTime)

	found, err := store.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", found.FirstName)
	assert.Equal(t, "new@example.com", found.Email)
	assert.Equal(t, created, found.CreationTime)
}

func TestAccountStoreUpdateDuplicateEmail(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Account{Email: "taken@example.com"}))
	b := &domain.Account{Email: "free@example.com"}
	require.NoError(t, store.Save(ctx, b))

	b.Email = "taken@example.com"
	assert.ErrorIs(t, store.Update(ctx, b), domain.ErrDuplicateKey)

	found, err := store.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "free@example.com", found.Email)
}

func TestAccountStoreUpdate_NotFound(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)

	err := store.Update(context.Background(), &domain.Account{ID: 42, Email: "ghost@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountStoreRemove(t *testing.T) {
	exec, _ := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	a := &domain.Account{Email: "gone@example.com"}
	require.NoError(t, store.Save(ctx, a))

	require.NoError(t, store.Remove(ctx, &domain.Account{ID: a.ID}))

	found, err := store.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.ErrorIs(t, store.Remove(ctx, a), domain.ErrNotFound)
	assert.ErrorIs(t, store.Remove(ctx, nil), domain.ErrInvalidArgument)
}

func TestAccountStoreReleasesSessions(t *testing.T) {
	exec, d := newStores(t)
	store := NewAccountStore(exec)
	ctx := context.Background()

	for i := range 1000 {
		if i%2 == 0 {
			require.NoError(t, store.Save(ctx, &domain.Account{Email: fmt.Sprintf("n%d@example.com", i)}))
		} else {
			_, err := store.FindByEmail(ctx, "missing@example.com")
			require.ErrorIs(t, err, domain.ErrNotFound)
		}
	}

	assert.Zero(t, exec.OpenSessions())
	assert.Zero(t, d.Stats().InUse)
}
