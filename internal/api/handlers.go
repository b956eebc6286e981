package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesikahq/patient-registry/internal/auth"
	"github.com/mesikahq/patient-registry/internal/patient"
	"github.com/mesikahq/patient-registry/internal/respond"
)

type Handler struct {
	authService    auth.Service
	patientService patient.Service
}

func NewHandler(authService auth.Service, patientService patient.Service) *Handler {
	return &Handler{
		authService:    authService,
		patientService: patientService,
	}
}

// Login exchanges Basic-Auth credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		respond.JSON(c, respond.Fail(http.StatusUnauthorized,
			"Authentication failed. Invalid username or password.", nil))
		return
	}

	data, err := h.authService.Login(c.Request.Context(), username, password)
	if err != nil {
		respond.JSON(c, respond.Fail(http.StatusUnauthorized,
			"Authentication failed. Invalid username or password.", nil))
		return
	}

	respond.JSON(c, respond.OK(http.StatusOK, "Authentication successful", data))
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var in patient.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.JSON(c, respond.Fail(http.StatusBadRequest,
			"Cuerpo de la petición inválido", gin.H{"detail": err.Error()}))
		return
	}

	res := h.patientService.Create(c.Request.Context(), in, auth.ActingUser(c))
	respond.JSON(c, res)
}

func (h *Handler) ListPatients(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	q := patient.ListQuery{
		Page:  page,
		Limit: limit,
		Filters: patient.Filters{
			Status:               c.Query("estado"),
			IdentificationNumber: c.Query("numero_identificacion"),
			Email:                c.Query("email"),
			FullName:             c.Query("nombre_completo"),
		},
	}

	res := h.patientService.List(c.Request.Context(), q)
	respond.JSON(c, res)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := h.patientID(c)
	if !ok {
		return
	}
	res := h.patientService.Get(c.Request.Context(), id)
	respond.JSON(c, res)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := h.patientID(c)
	if !ok {
		return
	}

	var in patient.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.JSON(c, respond.Fail(http.StatusBadRequest,
			"Cuerpo de la petición inválido", gin.H{"detail": err.Error()}))
		return
	}

	res := h.patientService.Update(c.Request.Context(), id, in, auth.ActingUser(c))
	respond.JSON(c, res)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := h.patientID(c)
	if !ok {
		return
	}
	res := h.patientService.Delete(c.Request.Context(), id, auth.ActingUser(c))
	respond.JSON(c, res)
}

func (h *Handler) patientID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respond.JSON(c, respond.Fail(http.StatusBadRequest,
			"Identificador de paciente inválido", nil))
		return 0, false
	}
	return id, true
}
