package patient

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/patient-registry/internal/audit"
	"github.com/mesikahq/patient-registry/internal/idtype"
	"github.com/mesikahq/patient-registry/internal/respond"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	// createAttempts bounds the id-allocation retry loop. Allocation reads
	// max(id)+1 and inserts in separate statements, so two concurrent
	// creates can race on the same id; the primary-key constraint rejects
	// the loser and we re-allocate.
	createAttempts = 3
)

// ListQuery carries the pagination and filter parameters of a listing
// request. Zero Page/Limit values fall back to the defaults.
type ListQuery struct {
	Page    int
	Limit   int
	Filters Filters
}

// Service executes the patient use cases. Every method returns the uniform
// response envelope; errors never propagate past this boundary.
type Service interface {
	Create(ctx context.Context, in CreateInput, actingUser string) *respond.Envelope
	List(ctx context.Context, q ListQuery) *respond.Envelope
	Get(ctx context.Context, id int) *respond.Envelope
	Update(ctx context.Context, id int, in UpdateInput, actingUser string) *respond.Envelope
	Delete(ctx context.Context, id int, actingUser string) *respond.Envelope
}

type service struct {
	store Store
	types idtype.Lookup
	audit audit.Service
}

func NewService(store Store, types idtype.Lookup, auditService audit.Service) Service {
	return &service{
		store: store,
		types: types,
		audit: auditService,
	}
}

func (s *service) Create(ctx context.Context, in CreateInput, actingUser string) *respond.Envelope {
	if in.IdentificationNumber == "" || in.IdentificationTypeCode == "" ||
		in.FirstName == "" || in.LastName == "" {
		return respond.Fail(http.StatusBadRequest,
			"Validaciones requeridas faltantes. (numero_identificacion, codigo_tipo_identificacion, primer_nombre, primer_apellido)",
			nil)
	}

	if in.Email != "" && !ValidEmail(in.Email) {
		return respond.Fail(http.StatusBadRequest,
			"Formato de correo electrónico inválido.", nil)
	}

	identType, err := s.types.FindByCode(ctx, in.IdentificationTypeCode)
	if err != nil {
		if errors.Is(err, idtype.ErrNotFound) {
			return respond.Fail(http.StatusBadRequest,
				"El tipo de identificación proporcionado no existe en la base de datos.", nil)
		}
		return respond.Fail(http.StatusInternalServerError,
			"Error interno creando el paciente", gin.H{"detail": err.Error()})
	}

	now := time.Now().UTC()
	p := &Patient{
		IdentificationNumber: in.IdentificationNumber,
		IdentificationType:   identType,
		FirstName:            in.FirstName,
		MiddleName:           in.MiddleName,
		LastName:             in.LastName,
		SecondLastName:       in.SecondLastName,
		FullName:             ComputeFullName(in.FirstName, in.MiddleName, in.LastName, in.SecondLastName),
		Email:                in.Email,
		Status:               StatusActive,
		CreatedAt:            now,
		CreatedBy:            actor(actingUser),
		UpdatedAt:            now,
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		p.ID = s.store.NextID(ctx)
		err = s.store.Insert(ctx, p)
		if err == nil || !IsDuplicateID(err) {
			break
		}
	}
	if err != nil {
		return respond.Fail(http.StatusInternalServerError,
			"Error interno creando el paciente", gin.H{"detail": err.Error()})
	}

	s.logAudit(ctx, audit.EventModify, "CREATE", p.ID, actingUser)
	return respond.OK(http.StatusCreated, "Paciente creado exitosamente", p)
}

func (s *service) List(ctx context.Context, q ListQuery) *respond.Envelope {
	page := q.Page
	if page < 1 {
		page = defaultPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	filters := q.Filters
	if filters.Status == "" {
		filters.Status = StatusActive
	}

	total, err := s.store.CountFiltered(ctx, filters)
	if err != nil {
		return respond.Fail(http.StatusInternalServerError,
			"Error obteniendo pacientes", gin.H{"detail": err.Error()})
	}

	patients, err := s.store.ListFiltered(ctx, filters, limit, (page-1)*limit)
	if err != nil {
		return respond.Fail(http.StatusInternalServerError,
			"Error obteniendo pacientes", gin.H{"detail": err.Error()})
	}

	return respond.OK(http.StatusOK, "Pacientes obtenidos exitosamente", gin.H{
		"pacientes":  patients,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + limit - 1) / limit,
	})
}

func (s *service) Get(ctx context.Context, id int) *respond.Envelope {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(http.StatusNotFound, "Paciente no encontrado", nil)
		}
		return respond.Fail(http.StatusInternalServerError,
			"Error obteniendo el paciente", gin.H{"detail": err.Error()})
	}
	return respond.OK(http.StatusOK, "Paciente obtenido exitosamente", p)
}

func (s *service) Update(ctx context.Context, id int, in UpdateInput, actingUser string) *respond.Envelope {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(http.StatusNotFound, "Paciente no encontrado", nil)
		}
		return respond.Fail(http.StatusInternalServerError,
			"Error actualizando el paciente", gin.H{"detail": err.Error()})
	}

	// numero_identificacion and codigo_tipo_identificacion are immutable
	// once set, no matter what else the request carries.
	if in.IdentificationNumber != "" || in.IdentificationTypeCode != "" {
		return respond.Fail(http.StatusBadRequest,
			"No está permitido actualizar el número de identificación ni el tipo.", nil)
	}

	if in.Has("email") && in.Email != "" && !ValidEmail(in.Email) {
		return respond.Fail(http.StatusBadRequest,
			"Formato de correo electrónico inválido.", nil)
	}

	// Required name parts only change when a non-empty value is supplied;
	// the optional parts follow key presence so clients can clear them.
	if in.FirstName != "" {
		p.FirstName = in.FirstName
	}
	if in.Has("segundo_nombre") {
		p.MiddleName = in.MiddleName
	}
	if in.LastName != "" {
		p.LastName = in.LastName
	}
	if in.Has("segundo_apellido") {
		p.SecondLastName = in.SecondLastName
	}
	if in.Has("email") {
		p.Email = in.Email
	}

	p.FullName = ComputeFullName(p.FirstName, p.MiddleName, p.LastName, p.SecondLastName)
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = actor(actingUser)

	if err := s.store.Update(ctx, p); err != nil {
		return respond.Fail(http.StatusInternalServerError,
			"Error actualizando el paciente", gin.H{"detail": err.Error()})
	}

	s.logAudit(ctx, audit.EventModify, "UPDATE", p.ID, actingUser)
	return respond.OK(http.StatusOK, "Paciente actualizado exitosamente", p)
}

func (s *service) Delete(ctx context.Context, id int, actingUser string) *respond.Envelope {
	p, err := s.store.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(http.StatusNotFound,
				"Paciente no encontrado o ya estaba inactivo", nil)
		}
		return respond.Fail(http.StatusInternalServerError,
			"Error eliminando el paciente", gin.H{"detail": err.Error()})
	}

	// Logical delete: the only status transition is A -> I, there is no
	// reactivation path.
	p.Status = StatusInactive
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = actor(actingUser)

	if err := s.store.Update(ctx, p); err != nil {
		return respond.Fail(http.StatusInternalServerError,
			"Error eliminando el paciente", gin.H{"detail": err.Error()})
	}

	s.logAudit(ctx, audit.EventDelete, "DELETE", p.ID, actingUser)
	return respond.OK(http.StatusOK, "Paciente eliminado exitosamente (baja lógica)", gin.H{})
}

func (s *service) logAudit(ctx context.Context, eventType audit.EventType, action string, id int, actingUser string) {
	s.audit.LogEvent(ctx, &audit.Event{
		EventType:  eventType,
		Actor:      actor(actingUser),
		Action:     action,
		Resource:   "paciente",
		ResourceID: strconv.Itoa(id),
		Status:     "success",
	})
}

func actor(actingUser string) string {
	if actingUser == "" {
		return SystemUser
	}
	return actingUser
}
