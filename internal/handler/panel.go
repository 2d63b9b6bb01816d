package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/segyhp/feedesk/internal/backend"
	"github.com/segyhp/feedesk/internal/config"
	"github.com/segyhp/feedesk/internal/domain"
	"github.com/segyhp/feedesk/internal/log"
	"github.com/segyhp/feedesk/internal/service"
	customError "github.com/segyhp/feedesk/pkg/errors"
	"github.com/segyhp/feedesk/pkg/response"
)

type PanelHandler struct {
	service     *service.PanelService
	loadTimeout time.Duration

	// raw driver and transport errors stay out of production responses
	exposeErrors bool
	logger       *log.Logger
}

func NewPanelHandler(service *service.PanelService, cfg *config.Config, logger *log.Logger) *PanelHandler {
	if logger == nil {
		logger = log.Nop()
	}
	return &PanelHandler{
		service:      service,
		loadTimeout:  cfg.GetLoadTimeout(),
		exposeErrors: !cfg.IsProduction(),
		logger:       logger.WithComponent(log.ComponentHTTP),
	}
}

// GetDashboard handles GET /dashboard?window=today|week|month|year
func (h *PanelHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withLoadTimeout(r.Context())
	defer cancel()

	snapshot, err := h.service.Dashboard(ctx, viewerOf(r), r.URL.Query().Get("window"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, snapshot)
}

// GetDueFees handles GET /fees/due
func (h *PanelHandler) GetDueFees(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withLoadTimeout(r.Context())
	defer cancel()

	digest, err := h.service.DueFees(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, digest)
}

// GetDigest handles GET /dashboard/digest
func (h *PanelHandler) GetDigest(w http.ResponseWriter, r *http.Request) {
	digest, err := h.service.Digest(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, digest)
}

// CreateFee handles POST /fees
func (h *PanelHandler) CreateFee(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateFeeRequest
	if !decodeBody(w, r, &request) {
		return
	}

	fee, err := h.service.RegisterFee(r.Context(), &request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, fee)
}

// CreateStudent handles POST /students
func (h *PanelHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateStudentRequest
	if !decodeBody(w, r, &request) {
		return
	}

	student, err := h.service.RegisterStudent(r.Context(), &request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, student)
}

// CreateDepartment handles POST /departments
func (h *PanelHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var request domain.DepartmentRequest
	if !decodeBody(w, r, &request) {
		return
	}

	department, err := h.service.CreateDepartment(r.Context(), &request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, department)
}

// UpdateDepartment handles PUT /departments/{id}
func (h *PanelHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var request domain.DepartmentRequest
	if !decodeBody(w, r, &request) {
		return
	}

	department, err := h.service.UpdateDepartment(r.Context(), id, &request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, department)
}

// CreateEmployee handles POST /employees
func (h *PanelHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateEmployeeRequest
	if !decodeBody(w, r, &request) {
		return
	}

	employee, err := h.service.CreateEmployee(r.Context(), &request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, employee)
}

// ViewerHeader identifies one panel session; window selections supersede only within it
const ViewerHeader = "X-Viewer-ID"

// viewerOf keys dashboard loads by session header, then viewer query param, then client address
func viewerOf(r *http.Request) string {
	if viewer := r.Header.Get(ViewerHeader); viewer != "" {
		return viewer
	}
	if viewer := r.URL.Query().Get("viewer"); viewer != "" {
		return viewer
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (h *PanelHandler) withLoadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.loadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.loadTimeout)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	return true
}

func (h *PanelHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			log.FieldMethod, r.Method, log.FieldPath, r.URL.Path, log.FieldError, err)
	}

	var be *customError.BusinessError
	if errors.As(err, &be) {
		message := be.Message
		var backendErr *backend.BackendError
		if errors.As(err, &backendErr) && backendErr.Message != "" {
			message = backendErr.Message
		}
		response.CodedError(w, status, be.Code, message)
		return
	}

	if status == http.StatusInternalServerError {
		if !h.exposeErrors {
			err = nil
		}
		response.InternalServerError(w, http.StatusText(status), err)
		return
	}
	response.Error(w, status, http.StatusText(status), err)
}

// statusFor maps business error codes onto HTTP status codes
func statusFor(err error) int {
	switch customError.Code(err) {
	case customError.ErrCodeValidation, customError.ErrCodeInvalidWindow:
		return http.StatusBadRequest
	case customError.ErrCodeStudentNotFound, customError.ErrCodeDepartmentNotFound, customError.ErrCodeDigestNotFound:
		return http.StatusNotFound
	case customError.ErrCodeSuperseded, customError.ErrCodeConflict:
		return http.StatusConflict
	case customError.ErrCodeBackendError:
		var backendErr *backend.BackendError
		if errors.As(err, &backendErr) && backendErr.StatusCode >= 400 && backendErr.StatusCode < 500 {
			return backendErr.StatusCode
		}
		return http.StatusBadGateway
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
