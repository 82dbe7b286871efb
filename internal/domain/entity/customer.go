package entity

import "time"

// Customer imported customer record
type Customer struct {
	ID          int64
	Reference   string
	Name        string
	Company     string
	Phone       string
	Email       string
	City        string
	Country     string
	Salesperson string
	Activity    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
