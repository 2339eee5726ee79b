package entity

import "time"

// Customer representa un cliente registrado (las ventas de mostrador usan campos guest).
type Customer struct {
	ID        string
	Name      string
	TaxID     string // NIT o Cédula
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
