package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/txdao/internal/domain"
)

func TestCompanyStoreSaveAndFind(t *testing.T) {
	exec, _ := newStores(t)
	store := NewCompanyStore(exec)
	ctx := context.Background()

	c := &domain.Company{Name: "Acme"}
	require.NoError(t, store.Save(ctx, c))
	assert.NotZero(t, c.ID)

	found, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Name)
	assert.Nil(t, found.Products)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCompanyStoreFindByID_NotFound(t *testing.T) {
	exec, _ := newStores(t)
	store := NewCompanyStore(exec)

	found, err := store.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCompanyStoreFindByIDFetchProducts(t *testing.T) {
	exec, _ := newStores(t)
	companies := NewCompanyStore(exec)
	products := NewProductStore(exec)
	ctx := context.Background()

	acme := &domain.Company{Name: "Acme"}
	other := &domain.Company{Name: "Other"}
	require.NoError(t, companies.Save(ctx, acme))
	require.NoError(t, companies.Save(ctx, other))

	for _, name := range []string{"Anvil", "Rocket", "Magnet"} {
		require.NoError(t, products.Save(ctx, &domain.Product{Name: name, CompanyID: acme.ID}))
	}
	require.NoError(t, products.Save(ctx, &domain.Product{Name: "Widget", CompanyID: other.ID}))

	found, err := companies.FindByIDFetchProducts(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, found.Products, 3)
	assert.Equal(t, "Anvil", found.Products[0].Name)
	assert.Equal(t, "Magnet", found.Products[2].Name)
	for _, p := range found.Products {
		assert.Equal(t, acme.ID, p.CompanyID)
	}
	assert.Zero(t, exec.OpenSessions())
}

func TestCompanyStoreFindByIDFetchProductsWithoutProducts(t *testing.T) {
	exec, _ := newStores(t)
	store := NewCompanyStore(exec)
	ctx := context.Background()

	c := &domain.Company{Name: "Empty"}
	require.NoError(t, store.Save(ctx, c))

	found, err := store.FindByIDFetchProducts(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.Products)
	assert.Empty(t, found.Products)
}

func TestCompanyStoreFindByIDFetchProducts_NotFound(t *testing.T) {
	exec, _ := newStores(t)
	store := NewCompanyStore(exec)

	_, err := store.FindByIDFetchProducts(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompanyStoreSaveRejectsInvalid(t *testing.T) {
	exec, _ := newStores(t)
	store := NewCompanyStore(exec)
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, store.Save(ctx, &domain.Company{}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, store.Save(ctx, &domain.Company{ID: 1, Name: "x"}), domain.ErrInvalidArgument)
}

func TestProductStoreSaveRequiresCompany(t *testing.T) {
	exec, _ := newStores(t)
	store := NewProductStore(exec)
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, &domain.Product{Name: "Loose"}), domain.ErrInvalidArgument)

	p := &domain.Product{Name: "Dangling", CompanyID: 999}
	err := store.Save(ctx, p)
	assert.ErrorIs(t, err, domain.ErrForeignKeyViolation)
	assert.Zero(t, p.ID)
}

func TestProductStoreFind(t *testing.T) {
	exec, _ := newStores(t)
	companies := NewCompanyStore(exec)
	store := NewProductStore(exec)
	ctx := context.Background()

	c := &domain.Company{Name: "Acme"}
	require.NoError(t, companies.Save(ctx, c))
	p := &domain.Product{Name: "Anvil", CompanyID: c.ID}
	require.NoError(t, store.Save(ctx, p))

	found, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, found)

	missing, err := store.FindByID(ctx, p.ID+1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byCompany, err := store.FindByCompanyID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Product{p}, byCompany)
}
