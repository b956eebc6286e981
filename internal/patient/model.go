package patient

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/mesikahq/patient-registry/internal/idtype"
)

const (
	StatusActive   = "A"
	StatusInactive = "I"
)

// SystemUser is recorded as the acting identity when no authenticated
// username is available.
const SystemUser = "SISTEMA"

// Patient is a row of mgm_pacientes joined with its identification type.
// JSON tags follow the wire contract of the API.
type Patient struct {
	ID                   int                        `json:"id_paciente"`
	IdentificationNumber string                     `json:"numero_identificacion"`
	IdentificationType   *idtype.IdentificationType `json:"tipo_identificacion,omitempty"`
	FirstName            string                     `json:"primer_nombre"`
	MiddleName           string                     `json:"segundo_nombre,omitempty"`
	LastName             string                     `json:"primer_apellido"`
	SecondLastName       string                     `json:"segundo_apellido,omitempty"`
	FullName             string                     `json:"nombre_completo"`
	Email                string                     `json:"email,omitempty"`
	Status               string                     `json:"estado"`
	CreatedAt            time.Time                  `json:"fecha_ingreso"`
	CreatedBy            string                     `json:"usuario_ingreso,omitempty"`
	UpdatedAt            time.Time                  `json:"fecha_modificacion"`
	UpdatedBy            string                     `json:"usuario_modificacion,omitempty"`
}

// ComputeFullName joins the non-empty name parts with single spaces, in
// first, middle, last, second-last order.
func ComputeFullName(first, middle, last, secondLast string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{first, middle, last, secondLast} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail checks the basic local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// CreateInput is the request body for registering a patient.
type CreateInput struct {
	IdentificationNumber   string `json:"numero_identificacion"`
	IdentificationTypeCode string `json:"codigo_tipo_identificacion"`
	FirstName              string `json:"primer_nombre"`
	MiddleName             string `json:"segundo_nombre"`
	LastName               string `json:"primer_apellido"`
	SecondLastName         string `json:"segundo_apellido"`
	Email                  string `json:"email"`
}

// UpdateInput is the request body for updating a patient. It keeps track of
// which keys were actually present in the JSON body: the optional fields
// (segundo_nombre, segundo_apellido, email) are applied whenever their key
// appears, including an explicit null or empty string to clear them, while an
// absent key leaves the stored value alone.
type UpdateInput struct {
	IdentificationNumber   string
	IdentificationTypeCode string
	FirstName              string
	MiddleName             string
	LastName               string
	SecondLastName         string
	Email                  string

	present map[string]bool
}

// Has reports whether the given JSON key appeared in the request body.
func (u *UpdateInput) Has(key string) bool {
	return u.present[key]
}

func (u *UpdateInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.present = make(map[string]bool, len(raw))
	for k := range raw {
		u.present[k] = true
	}

	var body struct {
		IdentificationNumber   *string `json:"numero_identificacion"`
		IdentificationTypeCode *string `json:"codigo_tipo_identificacion"`
		FirstName              *string `json:"primer_nombre"`
		MiddleName             *string `json:"segundo_nombre"`
		LastName               *string `json:"primer_apellido"`
		SecondLastName         *string `json:"segundo_apellido"`
		Email                  *string `json:"email"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	u.IdentificationNumber = deref(body.IdentificationNumber)
	u.IdentificationTypeCode = deref(body.IdentificationTypeCode)
	u.FirstName = deref(body.FirstName)
	u.MiddleName = deref(body.MiddleName)
	u.LastName = deref(body.LastName)
	u.SecondLastName = deref(body.SecondLastName)
	u.Email = deref(body.Email)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Filters narrows patient listings. Zero values mean "no filter" except
// Status, which the service defaults to StatusActive.
type Filters struct {
	Status               string
	IdentificationNumber string
	Email                string
	FullName             string
}
