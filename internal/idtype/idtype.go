package idtype

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no identification type carries the given code.
var ErrNotFound = errors.New("identification type not found")

// IdentificationType is reference data seeded and administered outside this
// service; the patient core only ever reads it.
type IdentificationType struct {
	Code   string `json:"codigo_tipo_identificacion"`
	Name   string `json:"nombre_tipo_identificacion"`
	Status string `json:"estado"`
}

type Lookup interface {
	FindByCode(ctx context.Context, code string) (*IdentificationType, error)
}

type store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) Lookup {
	return &store{db: db}
}

// FindByCode resolves a code by exact match. Types do not need to be active
// to be referenced.
func (s *store) FindByCode(ctx context.Context, code string) (*IdentificationType, error) {
	var t IdentificationType
	err := s.db.QueryRow(ctx,
		`SELECT codigo_tipo_identificacion, nombre_tipo_identificacion, estado
		 FROM daf_tipos_identificacion
		 WHERE codigo_tipo_identificacion = $1`,
		code).Scan(&t.Code, &t.Name, &t.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
