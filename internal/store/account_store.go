package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vbonduro/txdao/internal/domain"
	"github.com/vbonduro/txdao/internal/unitofwork"
)

var accounts = mapping[domain.Account]{
	table:   "account",
	columns: "id, first_name, last_name, email, creation_time",
	scan: func(row scanner) (*domain.Account, error) {
		a := &domain.Account{}
		if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.CreationTime); err != nil {
			return nil, err
		}
		return a, nil
	},
}

type AccountStore struct {
	exec *unitofwork.Executor
}

func NewAccountStore(exec *unitofwork.Executor) *AccountStore {
	return &AccountStore{exec: exec}
}

// Save inserts a new account. The generated identifier and creation time are
// set on a only after the insert has committed.
func (s *AccountStore) Save(ctx context.Context, a *domain.Account) error {
	if a == nil {
		return fmt.Errorf("save account: nil account: %w", domain.ErrInvalidArgument)
	}
	if a.ID != 0 {
		return fmt.Errorf("save account: id %d already assigned: %w", a.ID, domain.ErrInvalidArgument)
	}
	if a.Email == "" {
		return fmt.Errorf("save account: email is required: %w", domain.ErrInvalidArgument)
	}

	stored, err := unitofwork.PerformReturning(ctx, s.exec, "save account", func(ctx context.Context, sess *unitofwork.Session) (*domain.Account, error) {
		id, err := insert(ctx, sess, accounts.table,
			"INSERT INTO account (first_name, last_name, email) VALUES (?, ?, ?)",
			a.FirstName, a.LastName, a.Email)
		if err != nil {
			return nil, err
		}
		return accounts.mustFindByID(ctx, sess, id)
	})
	if err != nil {
		return err
	}

	a.ID = stored.ID
	a.CreationTime = stored.CreationTime
	return nil
}

// FindByID returns nil, nil when the account does not exist.
func (s *AccountStore) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find account by id", func(ctx context.Context, sess *unitofwork.Session) (*domain.Account, error) {
		return accounts.findByID(ctx, sess, id)
	})
}

// FindByEmail fails with domain.ErrNotFound when no account has the address.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find account by email", func(ctx context.Context, sess *unitofwork.Session) (*domain.Account, error) {
		return accounts.single(ctx, sess, "email = ?", email)
	})
}

func (s *AccountStore) FindAll(ctx context.Context) ([]*domain.Account, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find all accounts", func(ctx context.Context, sess *unitofwork.Session) ([]*domain.Account, error) {
		return accounts.findAll(ctx, sess)
	})
}

// Update writes the caller's copy over the stored row. The creation time is
// never changed.
func (s *AccountStore) Update(ctx context.Context, a *domain.Account) error {
	if a == nil {
		return fmt.Errorf("update account: nil account: %w", domain.ErrInvalidArgument)
	}
	if a.ID == 0 {
		return fmt.Errorf("update account: id is required: %w", domain.ErrInvalidArgument)
	}
	if a.Email == "" {
		return fmt.Errorf("update account: email is required: %w", domain.ErrInvalidArgument)
	}

	created, err := unitofwork.PerformReturning(ctx, s.exec, "update account", func(ctx context.Context, sess *unitofwork.Session) (time.Time, error) {
		current, err := accounts.mustFindByID(ctx, sess, a.ID)
		if err != nil {
			return time.Time{}, err
		}
		err = execOne(ctx, sess, accounts.table,
			"UPDATE account SET first_name = ?, last_name = ?, email = ? WHERE id = ?",
			a.FirstName, a.LastName, a.Email, a.ID)
		return current.CreationTime, err
	})
	if err != nil {
		return err
	}

	a.CreationTime = created
	return nil
}

func (s *AccountStore) Remove(ctx context.Context, a *domain.Account) error {
	if a == nil {
		return fmt.Errorf("remove account: nil account: %w", domain.ErrInvalidArgument)
	}
	if a.ID == 0 {
		return fmt.Errorf("remove account: id is required: %w", domain.ErrInvalidArgument)
	}

	return s.exec.Perform(ctx, "remove account", func(ctx context.Context, sess *unitofwork.Session) error {
		return accounts.deleteByID(ctx, sess, a.ID)
	})
}
