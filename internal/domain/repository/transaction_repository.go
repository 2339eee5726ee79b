package repository

import (
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// TransactionFilter filtro estructurado para listar ventas.
type TransactionFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// TransactionRepository define el puerto de persistencia para ventas y sus líneas.
type TransactionRepository interface {
	Create(tx *entity.Transaction) error
	CreateItem(item *entity.TransactionItem) error
	GetByID(id string) (*entity.Transaction, error)
	// GetByIDForUpdate bloquea la cabecera para validar y cambiar el estado sin carreras.
	GetByIDForUpdate(id string) (*entity.Transaction, error)
	GetItems(transactionID string) ([]*entity.TransactionItem, error)
	UpdateStatus(id, status string, updatedAt time.Time) error
	AppendNotes(id, notes string, updatedAt time.Time) error
	List(filter TransactionFilter) ([]*entity.Transaction, error)
}
