package repository

import "github.com/jhoicas/PuntoVenta-api/internal/domain/entity"

// ProductFilter filtro estructurado para listar productos.
type ProductFilter struct {
	CategoryID string
	NameSearch string
	OnlyActive bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para productos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	SetActive(id string, active bool) error
	List(filter ProductFilter) ([]*entity.Product, error)
}
