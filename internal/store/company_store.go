package store

import (
	"context"
	"fmt"

	"github.com/vbonduro/txdao/internal/domain"
	"github.com/vbonduro/txdao/internal/unitofwork"
)

var (
	companies = mapping[domain.Company]{
		table:   "company",
		columns: "id, name",
		scan: func(row scanner) (*domain.Company, error) {
			c := &domain.Company{}
			if err := row.Scan(&c.ID, &c.Name); err != nil {
				return nil, err
			}
			return c, nil
		},
	}

	products = mapping[domain.Product]{
		table:   "product",
		columns: "id, name, company_id",
		scan: func(row scanner) (*domain.Product, error) {
			p := &domain.Product{}
			if err := row.Scan(&p.ID, &p.Name, &p.CompanyID); err != nil {
				return nil, err
			}
			return p, nil
		},
	}
)

type CompanyStore struct {
	exec *unitofwork.Executor
}

func NewCompanyStore(exec *unitofwork.Executor) *CompanyStore {
	return &CompanyStore{exec: exec}
}

// Save inserts the company row only. Products are stored through
// ProductStore.
func (s *CompanyStore) Save(ctx context.Context, c *domain.Company) error {
	if c == nil {
		return fmt.Errorf("save company: nil company: %w", domain.ErrInvalidArgument)
	}
	if c.ID != 0 {
		return fmt.Errorf("save company: id %d already assigned: %w", c.ID, domain.ErrInvalidArgument)
	}
	if c.Name == "" {
		return fmt.Errorf("save company: name is required: %w", domain.ErrInvalidArgument)
	}

	id, err := unitofwork.PerformReturning(ctx, s.exec, "save company", func(ctx context.Context, sess *unitofwork.Session) (int64, error) {
		return insert(ctx, sess, companies.table, "INSERT INTO company (name) VALUES (?)", c.Name)
	})
	if err != nil {
		return err
	}

	c.ID = id
	return nil
}

// FindByID returns the company without its products, or nil, nil.
func (s *CompanyStore) FindByID(ctx context.Context, id int64) (*domain.Company, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find company by id", func(ctx context.Context, sess *unitofwork.Session) (*domain.Company, error) {
		return companies.findByID(ctx, sess, id)
	})
}

func (s *CompanyStore) FindAll(ctx context.Context) ([]*domain.Company, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find all companies", func(ctx context.Context, sess *unitofwork.Session) ([]*domain.Company, error) {
		return companies.findAll(ctx, sess)
	})
}

// FindByIDFetchProducts returns the company with every product it owns, read
// in the same transaction. A missing company fails with domain.ErrNotFound; a
// company without products has an empty, non-nil collection.
func (s *CompanyStore) FindByIDFetchProducts(ctx context.Context, id int64) (*domain.Company, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find company with products", func(ctx context.Context, sess *unitofwork.Session) (*domain.Company, error) {
		c, err := companies.single(ctx, sess, "id = ?", id)
		if err != nil {
			return nil, err
		}
		c.Products, err = products.listWhere(ctx, sess, "company_id = ?", c.ID)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

type ProductStore struct {
	exec *unitofwork.Executor
}

func NewProductStore(exec *unitofwork.Executor) *ProductStore {
	return &ProductStore{exec: exec}
}

// Save inserts a product for an existing company. A company that does not
// exist fails with domain.ErrForeignKeyViolation.
func (s *ProductStore) Save(ctx context.Context, p *domain.Product) error {
	if p == nil {
		return fmt.Errorf("save product: nil product: %w", domain.ErrInvalidArgument)
	}
	if p.ID != 0 {
		return fmt.Errorf("save product: id %d already assigned: %w", p.ID, domain.ErrInvalidArgument)
	}
	if p.Name == "" {
		return fmt.Errorf("save product: name is required: %w", domain.ErrInvalidArgument)
	}
	if p.CompanyID == 0 {
		return fmt.Errorf("save product: company is required: %w", domain.ErrInvalidArgument)
	}

	id, err := unitofwork.PerformReturning(ctx, s.exec, "save product", func(ctx context.Context, sess *unitofwork.Session) (int64, error) {
		return insert(ctx, sess, products.table,
			"INSERT INTO product (name, company_id) VALUES (?, ?)", p.Name, p.CompanyID)
	})
	if err != nil {
		return err
	}

	p.ID = id
	return nil
}

func (s *ProductStore) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find product by id", func(ctx context.Context, sess *unitofwork.Session) (*domain.Product, error) {
		return products.findByID(ctx, sess, id)
	})
}

func (s *ProductStore) FindByCompanyID(ctx context.Context, companyID int64) ([]*domain.Product, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find products by company", func(ctx context.Context, sess *unitofwork.Session) ([]*domain.Product, error) {
		return products.listWhere(ctx, sess, "company_id = ?", companyID)
	})
}
