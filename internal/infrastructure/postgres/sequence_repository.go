package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo asigna consecutivos por (ámbito, día) con un UPSERT atómico.
// Dos ventas concurrentes del mismo día nunca reciben el mismo número.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo del ámbito para el día dado.
func (r *SequenceRepo) Next(scope string, day time.Time) (int64, error) {
	query := `
		INSERT INTO sequences (scope, day, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope, day)
		DO UPDATE SET value = sequences.value + 1
		RETURNING value`
	var n int64
	err := r.q.QueryRow(context.Background(), query, scope, day.Format("2006-01-02")).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
