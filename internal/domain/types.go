package domain

import "time"

type Account struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	CreationTime time.Time
}

type Company struct {
	ID       int64
	Name     string
	Products []*Product
}

type Product struct {
	ID        int64
	Name      string
	CompanyID int64
}
