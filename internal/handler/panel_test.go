package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/feedesk/internal/backend"
	"github.com/segyhp/feedesk/internal/config"
	"github.com/segyhp/feedesk/internal/dashboard"
	"github.com/segyhp/feedesk/internal/domain"
	"github.com/segyhp/feedesk/internal/mocks"
	"github.com/segyhp/feedesk/internal/service"
	"github.com/segyhp/feedesk/internal/validation"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(store *mocks.MockStore, digests *mocks.MockDigestStore) http.Handler {
	cfg := &config.Config{Dashboard: config.DashboardConfig{LoadTimeout: "5s"}}
	loader := dashboard.NewLoader(store, dashboard.Options{
		Now: func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) },
	}, nil)
	svc := service.NewPanelService(store, loader, digests, validation.New(), nil)

	health := NewHealthHandler(time.Second, map[string]Pinger{"source": store, "redis": digests})
	return NewRouter(NewPanelHandler(svc, cfg, nil), health, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestGetDashboard(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("ListStudents", mock.Anything).Return([]domain.Student{
		{ID: "S1", Name: "Amina Otieno", TotalFee: decimal.NewFromInt(50000)},
	}, nil)
	store.On("ListFees", mock.Anything).Return([]domain.FeePayment{
		{ID: "F1", StudentID: "S1", Status: domain.FeeStatusPaid, Amount: decimal.NewFromInt(20000)},
	}, nil)

	router := setupRouter(store, mocks.NewMockDigestStore())
	rec, env := do(t, router, http.MethodGet, "/api/v1/dashboard?window=month", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var snapshot domain.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, domain.WindowMonth, snapshot.Window.Kind)
	require.Len(t, snapshot.DueFees, 1)
	assert.True(t, snapshot.DueFees[0].DueAmount.Equal(decimal.NewFromInt(30000)))
	require.Len(t, snapshot.Payments, 1)
	assert.Equal(t, "Amina Otieno", snapshot.Payments[0].StudentName)
}

func TestGetDashboard_InvalidWindow(t *testing.T) {
	router := setupRouter(&mocks.MockStore{}, mocks.NewMockDigestStore())

	rec, env := do(t, router, http.MethodGet, "/api/v1/dashboard?window=decade", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, customError.ErrCodeInvalidWindow, env.Code)
}

func TestGetDueFees_BackendDown(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("ListStudents", mock.Anything).Return(nil, customError.ErrBackendUnavailable)
	store.On("ListFees", mock.Anything).Return([]domain.FeePayment{}, nil)

	router := setupRouter(store, mocks.NewMockDigestStore())
	rec, env := do(t, router, http.MethodGet, "/api/v1/fees/due", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, customError.ErrCodeBackendError, env.Code)
}

func TestGetDigest_NotFound(t *testing.T) {
	digests := mocks.NewMockDigestStore()
	digests.On("Latest", mock.Anything).Return(nil, customError.WrapDigestNotFound())

	router := setupRouter(&mocks.MockStore{}, digests)
	rec, env := do(t, router, http.MethodGet, "/api/v1/dashboard/digest", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, customError.ErrCodeDigestNotFound, env.Code)
}

func TestCreateFee(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("CreateFee", mock.Anything, mock.MatchedBy(func(r *domain.CreateFeeRequest) bool {
		return r.StudentID == "S1" && r.Amount.Equal(decimal.NewFromInt(5000))
	})).Return(&domain.FeePayment{ID: "F9", StudentID: "S1", Status: domain.FeeStatusPending}, nil)

	router := setupRouter(store, mocks.NewMockDigestStore())
	rec, env := do(t, router, http.MethodPost, "/api/v1/fees",
		`{"studentId":"S1","amount":"5000","dueDate":"2024-04-01T00:00:00Z","description":"Term 2","status":"pending"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var fee domain.FeePayment
	require.NoError(t, json.Unmarshal(env.Data, &fee))
	assert.Equal(t, "F9", fee.ID)
	store.AssertExpectations(t)
}

func TestCreateFee_ValidationFailure(t *testing.T) {
	store := &mocks.MockStore{}
	router := setupRouter(store, mocks.NewMockDigestStore())

	rec, env := do(t, router, http.MethodPost, "/api/v1/fees", `{"studentId":"","amount":0,"status":"pending"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, customError.ErrCodeValidation, env.Code)
	assert.Contains(t, env.Error, "studentId")
	store.AssertNotCalled(t, "CreateFee", mock.Anything, mock.Anything)
}

func TestCreateFee_MalformedBody(t *testing.T) {
	router := setupRouter(&mocks.MockStore{}, mocks.NewMockDigestStore())

	rec, env := do(t, router, http.MethodPost, "/api/v1/fees", `{"studentId":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestCreateStudent_BackendRejects(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("CreateStudent", mock.Anything, mock.Anything).Return(nil, &backend.BackendError{
		StatusCode: http.StatusConflict,
		Method:     http.MethodPost,
		Path:       "/students",
		Message:    "roll number already exists",
	})

	router := setupRouter(store, mocks.NewMockDigestStore())
	rec, env := do(t, router, http.MethodPost, "/api/v1/students",
		`{"name":"Brian Kato","rollNumber":"R-002","departmentId":"D1","totalFee":10000}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "roll number already exists", env.Error)
}

func TestUpdateDepartment(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("UpdateDepartment", mock.Anything, "D1", mock.Anything).
		Return(&domain.Department{ID: "D1", Name: "Physics", Code: "PHY"}, nil)
	store.On("UpdateDepartment", mock.Anything, "D404", mock.Anything).
		Return(nil, customError.WrapDepartmentNotFound("D404"))

	router := setupRouter(store, mocks.NewMockDigestStore())

	rec, _ := do(t, router, http.MethodPut, "/api/v1/departments/D1", `{"name":"Physics","code":"PHY","specialities":["Optics"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, router, http.MethodPut, "/api/v1/departments/D404", `{"name":"Physics","code":"PHY"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, customError.ErrCodeDepartmentNotFound, env.Code)
}

func TestCreateEmployee(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("CreateEmployee", mock.Anything, mock.Anything).
		Return(&domain.Employee{ID: "E1", Name: "Grace Wanjiru"}, nil)

	router := setupRouter(store, mocks.NewMockDigestStore())

	rec, _ := do(t, router, http.MethodPost, "/api/v1/employees",
		`{"name":"Grace Wanjiru","email":"grace@example.edu","departments":["D1"],"accessPermissions":["fees","reports"]}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, router, http.MethodPost, "/api/v1/employees",
		`{"name":"Grace Wanjiru","email":"grace@example.edu","accessPermissions":["root"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "unknown permission")
}

func TestCreateDepartment(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("CreateDepartment", mock.Anything, mock.Anything).
		Return(&domain.Department{ID: "D2", Name: "Chemistry", Code: "CHEM"}, nil)

	router := setupRouter(store, mocks.NewMockDigestStore())
	rec, _ := do(t, router, http.MethodPost, "/api/v1/departments", `{"name":"Chemistry","code":"CHEM","specialities":[]}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", customError.WrapValidation("bad"), http.StatusBadRequest},
		{"superseded", customError.WrapSuperseded(), http.StatusConflict},
		{"duplicate", customError.WrapConflict("Department code CS already exists"), http.StatusConflict},
		{"student not found", customError.WrapStudentNotFound("S1"), http.StatusNotFound},
		{"backend 5xx", customError.WrapBackendError(&backend.BackendError{StatusCode: 503}), http.StatusBadGateway},
		{"backend 422", customError.WrapBackendError(&backend.BackendError{StatusCode: 422}), http.StatusUnprocessableEntity},
		{"database", customError.WrapDatabaseError(errors.New("x")), http.StatusInternalServerError},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestViewerOf(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", viewerOf(req))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?viewer=desk-b", nil)
	assert.Equal(t, "desk-b", viewerOf(req))

	req.Header.Set(ViewerHeader, "desk-a")
	assert.Equal(t, "desk-a", viewerOf(req))
}

func TestGetDashboard_ViewersLoadConcurrently(t *testing.T) {
	store := &mocks.MockStore{}
	students := []domain.Student{{ID: "S1", Name: "Amina Otieno", TotalFee: decimal.NewFromInt(50000)}}
	started := make(chan struct{})
	release := make(chan struct{})
	store.On("ListStudents", mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return(students, nil).Once()
	store.On("ListStudents", mock.Anything).Return(students, nil).Once()
	store.On("ListFees", mock.Anything).Return([]domain.FeePayment{}, nil)

	router := setupRouter(store, mocks.NewMockDigestStore())

	load := func(viewer, window string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?window="+window, nil)
		req.Header.Set(ViewerHeader, viewer)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := make(chan int, 1)
	go func() { first <- load("desk-a", "today").Code }()

	<-started
	assert.Equal(t, http.StatusOK, load("desk-b", "week").Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-first)
}

func TestUnknownRoute(t *testing.T) {
	router := setupRouter(&mocks.MockStore{}, mocks.NewMockDigestStore())

	rec, env := do(t, router, http.MethodGet, "/api/v1/nothing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestWriteError_HidesInternalsInProduction(t *testing.T) {
	cause := errors.New("pq: connection to 10.0.0.3 refused")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fees/due", nil)

	prod := NewPanelHandler(nil, &config.Config{Server: config.ServerConfig{Env: "production"}}, nil)
	rec := httptest.NewRecorder()
	prod.writeError(rec, req, cause)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")

	dev := NewPanelHandler(nil, &config.Config{Server: config.ServerConfig{Env: "development"}}, nil)
	rec = httptest.NewRecorder()
	dev.writeError(rec, req, cause)
	assert.Contains(t, rec.Body.String(), "10.0.0.3")
}
