package repository

import "time"

// SequenceRepository asigna consecutivos por (ámbito, día) con incremento
// atómico en la base de datos, para numerar facturas sin carreras entre
// ventas concurrentes.
type SequenceRepository interface {
	Next(scope string, day time.Time) (int64, error)
}
