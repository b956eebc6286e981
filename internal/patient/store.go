package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesikahq/patient-registry/internal/idtype"
)

// ErrNotFound is returned when no patient matches the lookup.
var ErrNotFound = errors.New("patient not found")

// Store owns every storage operation against mgm_pacientes.
type Store interface {
	// NextID computes max(id)+1. It never fails: an empty table or a query
	// error both degrade to 1. Allocation races are resolved by the caller
	// retrying on a duplicate-key insert.
	NextID(ctx context.Context) int
	Insert(ctx context.Context, p *Patient) error
	ListFiltered(ctx context.Context, f Filters, limit, offset int) ([]Patient, error)
	CountFiltered(ctx context.Context, f Filters) (int, error)
	FindByID(ctx context.Context, id int) (*Patient, error)
	FindActiveByID(ctx context.Context, id int) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
}

type store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) Store {
	return &store{db: db}
}

// IsDuplicateID reports whether err is a primary-key unique violation, i.e.
// another create won the race for the same allocated id.
func IsDuplicateID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *store) NextID(ctx context.Context) int {
	var next int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(id_paciente), 0) + 1 FROM mgm_pacientes`).Scan(&next)
	if err != nil {
		return 1
	}
	return next
}

func (s *store) Insert(ctx context.Context, p *Patient) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO mgm_pacientes
			(id_paciente, codigo_tipo_identificacion, numero_identificacion,
			 primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
			 nombre_completo, email, estado,
			 fecha_ingreso, usuario_ingreso, fecha_modificacion, usuario_modificacion)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.IdentificationType.Code, p.IdentificationNumber,
		p.FirstName, nullable(p.MiddleName), p.LastName, nullable(p.SecondLastName),
		p.FullName, nullable(p.Email), p.Status,
		p.CreatedAt, nullable(p.CreatedBy), p.UpdatedAt, nullable(p.UpdatedBy))
	if err != nil {
		return fmt.Errorf("inserting patient %d: %w", p.ID, err)
	}
	return nil
}

const selectColumns = `
	p.id_paciente, p.numero_identificacion,
	p.primer_nombre, p.segundo_nombre, p.primer_apellido, p.segundo_apellido,
	p.nombre_completo, p.email, p.estado,
	p.fecha_ingreso, p.usuario_ingreso, p.fecha_modificacion, p.usuario_modificacion,
	t.codigo_tipo_identificacion, t.nombre_tipo_identificacion, t.estado`

const fromJoin = `
	FROM mgm_pacientes p
	JOIN daf_tipos_identificacion t
	  ON t.codigo_tipo_identificacion = p.codigo_tipo_identificacion`

func filterConditions(f Filters, args *[]interface{}) string {
	conditions := make([]string, 0, 4)
	if f.Status != "" {
		*args = append(*args, f.Status)
		conditions = append(conditions, fmt.Sprintf("p.estado = $%d", len(*args)))
	}
	if f.IdentificationNumber != "" {
		*args = append(*args, f.IdentificationNumber)
		conditions = append(conditions, fmt.Sprintf("p.numero_identificacion = $%d", len(*args)))
	}
	if f.Email != "" {
		*args = append(*args, f.Email)
		conditions = append(conditions, fmt.Sprintf("p.email = $%d", len(*args)))
	}
	if f.FullName != "" {
		*args = append(*args, "%"+f.FullName+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(p.nombre_completo) LIKE LOWER($%d)", len(*args)))
	}
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

func (s *store) ListFiltered(ctx context.Context, f Filters, limit, offset int) ([]Patient, error) {
	args := make([]interface{}, 0, 6)
	query := "SELECT" + selectColumns + fromJoin + filterConditions(f, &args)

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY p.id_paciente LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	defer rows.Close()

	patients := make([]Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning patient row: %w", err)
		}
		patients = append(patients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating patient rows: %w", err)
	}
	return patients, nil
}

func (s *store) CountFiltered(ctx context.Context, f Filters) (int, error) {
	args := make([]interface{}, 0, 4)
	query := "SELECT COUNT(*)" + fromJoin + filterConditions(f, &args)

	var total int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting patients: %w", err)
	}
	return total, nil
}

func (s *store) FindByID(ctx context.Context, id int) (*Patient, error) {
	return s.findOne(ctx, "SELECT"+selectColumns+fromJoin+" WHERE p.id_paciente = $1", id)
}

func (s *store) FindActiveByID(ctx context.Context, id int) (*Patient, error) {
	return s.findOne(ctx,
		"SELECT"+selectColumns+fromJoin+" WHERE p.id_paciente = $1 AND p.estado = $2",
		id, StatusActive)
}

func (s *store) findOne(ctx context.Context, query string, args ...interface{}) (*Patient, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying patient: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying patient: %w", err)
		}
		return nil, ErrNotFound
	}
	p, err := scanPatient(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning patient row: %w", err)
	}
	return p, nil
}

func (s *store) Update(ctx context.Context, p *Patient) error {
	_, err := s.db.Exec(ctx,
		`UPDATE mgm_pacientes SET
			primer_nombre = $1, segundo_nombre = $2,
			primer_apellido = $3, segundo_apellido = $4,
			nombre_completo = $5, email = $6, estado = $7,
			fecha_modificacion = $8, usuario_modificacion = $9
		 WHERE id_paciente = $10`,
		p.FirstName, nullable(p.MiddleName),
		p.LastName, nullable(p.SecondLastName),
		p.FullName, nullable(p.Email), p.Status,
		p.UpdatedAt, nullable(p.UpdatedBy),
		p.ID)
	if err != nil {
		return fmt.Errorf("updating patient %d: %w", p.ID, err)
	}
	return nil
}

func scanPatient(rows pgx.Rows) (*Patient, error) {
	var (
		p          Patient
		t          idtype.IdentificationType
		middleName *string
		secondLast *string
		email      *string
		createdBy  *string
		updatedBy  *string
	)
	err := rows.Scan(
		&p.ID, &p.IdentificationNumber,
		&p.FirstName, &middleName, &p.LastName, &secondLast,
		&p.FullName, &email, &p.Status,
		&p.CreatedAt, &createdBy, &p.UpdatedAt, &updatedBy,
		&t.Code, &t.Name, &t.Status,
	)
	if err != nil {
		return nil, err
	}
	p.MiddleName = deref(middleName)
	p.SecondLastName = deref(secondLast)
	p.Email = deref(email)
	p.CreatedBy = deref(createdBy)
	p.UpdatedBy = deref(updatedBy)
	p.IdentificationType = &t
	return &p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
