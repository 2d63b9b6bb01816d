package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/segyhp/feedesk/internal/domain"
	"github.com/segyhp/feedesk/internal/log"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

// BackendError is a non-2xx answer from the backend API
type BackendError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Client talks to the institution's CRUD API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithComponent(log.ComponentBackend),
	}
}

func (c *Client) ListStudents(ctx context.Context) ([]domain.Student, error) {
	body, err := c.do(ctx, http.MethodGet, "/students", nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.Student](body)
}

func (c *Client) ListFees(ctx context.Context) ([]domain.FeePayment, error) {
	body, err := c.do(ctx, http.MethodGet, "/fees", nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.FeePayment](body)
}

func (c *Client) CreateFee(ctx context.Context, request *domain.CreateFeeRequest) (*domain.FeePayment, error) {
	body, err := c.do(ctx, http.MethodPost, "/fees", request)
	if err != nil {
		return nil, err
	}
	return DecodeOne[domain.FeePayment](body)
}

func (c *Client) CreateStudent(ctx context.Context, request *domain.CreateStudentRequest) (*domain.Student, error) {
	body, err := c.do(ctx, http.MethodPost, "/students", request)
	if err != nil {
		return nil, err
	}
	return DecodeOne[domain.Student](body)
}

func (c *Client) CreateDepartment(ctx context.Context, request *domain.DepartmentRequest) (*domain.Department, error) {
	body, err := c.do(ctx, http.MethodPost, "/departments", request)
	if err != nil {
		return nil, err
	}
	return DecodeOne[domain.Department](body)
}

func (c *Client) UpdateDepartment(ctx context.Context, id string, request *domain.DepartmentRequest) (*domain.Department, error) {
	body, err := c.do(ctx, http.MethodPut, "/departments/"+url.PathEscape(id), request)
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) && be.StatusCode == http.StatusNotFound {
			return nil, customError.WrapDepartmentNotFound(id)
		}
		return nil, err
	}
	return DecodeOne[domain.Department](body)
}

func (c *Client) CreateEmployee(ctx context.Context, request *domain.CreateEmployeeRequest) (*domain.Employee, error) {
	body, err := c.do(ctx, http.MethodPost, "/employees", request)
	if err != nil {
		return nil, err
	}
	return DecodeOne[domain.Employee](body)
}

// Ping checks that the backend answers at all; any non-5xx status counts as alive
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", customError.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", customError.ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed",
			log.FieldMethod, method, log.FieldPath, path, log.FieldError, err)
		return nil, fmt.Errorf("%w: %v", customError.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.DebugContext(ctx, "backend request",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessage(body),
		}
	}
	return body, nil
}

// errorMessage pulls message or error out of an error body, if it is JSON
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		return parsed.Error
	}
	return strings.TrimSpace(string(body))
}
