package service

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/feedesk/internal/dashboard"
	"github.com/segyhp/feedesk/internal/domain"
	"github.com/segyhp/feedesk/internal/log"
	"github.com/segyhp/feedesk/internal/repository"
	"github.com/segyhp/feedesk/internal/validation"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

// DigestStore keeps the last computed due-fee digest
type DigestStore interface {
	Save(ctx context.Context, digest *domain.Digest) error
	Latest(ctx context.Context) (*domain.Digest, error)
}

type PanelService struct {
	store     repository.Store
	loader    *dashboard.Loader
	digests   DigestStore
	validator *validation.Validator
	logger    *log.Logger
	now       func() time.Time
}

func NewPanelService(
	store repository.Store,
	loader *dashboard.Loader,
	digests DigestStore,
	validator *validation.Validator,
	logger *log.Logger,
) *PanelService {
	if logger == nil {
		logger = log.Nop()
	}
	return &PanelService{
		store:     store,
		loader:    loader,
		digests:   digests,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Dashboard loads the combined dashboard of one viewer for a window kind; an empty
// kind means today. Only a newer selection by the same viewer supersedes the load.
func (s *PanelService) Dashboard(ctx context.Context, viewer, window string) (*domain.Dashboard, error) {
	if window == "" {
		window = domain.WindowToday
	}

	snapshot, err := s.loader.Load(ctx, viewer, window)
	if err != nil {
		if errors.Is(err, dashboard.ErrSuperseded) {
			return nil, customError.WrapSuperseded()
		}
		return nil, sourceError(err)
	}
	return snapshot, nil
}

// DueFees computes the due list live from the store
func (s *PanelService) DueFees(ctx context.Context) (*domain.Digest, error) {
	digest, err := dashboard.ComputeDigest(ctx, s.store, s.now())
	if err != nil {
		return nil, sourceError(err)
	}
	return digest, nil
}

// Digest returns the last digest the scheduler stored
func (s *PanelService) Digest(ctx context.Context) (*domain.Digest, error) {
	return s.digests.Latest(ctx)
}

// RefreshDigest recomputes the due list and stores it
func (s *PanelService) RefreshDigest(ctx context.Context) (*domain.Digest, error) {
	digest, err := s.DueFees(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.digests.Save(ctx, digest); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "due-fee digest refreshed",
		log.FieldCount, digest.Totals.Students,
		"due_total", digest.Totals.Amount.StringFixed(2),
	)
	return digest, nil
}

func (s *PanelService) RegisterFee(ctx context.Context, request *domain.CreateFeeRequest) (*domain.FeePayment, error) {
	if err := s.validator.Struct(request); err != nil {
		return nil, err
	}

	fee, err := s.store.CreateFee(ctx, request)
	if err != nil {
		return nil, sourceError(err)
	}
	return fee, nil
}

func (s *PanelService) RegisterStudent(ctx context.Context, request *domain.CreateStudentRequest) (*domain.Student, error) {
	if err := s.validator.Struct(request); err != nil {
		return nil, err
	}

	student, err := s.store.CreateStudent(ctx, request)
	if err != nil {
		return nil, sourceError(err)
	}
	return student, nil
}

func (s *PanelService) CreateDepartment(ctx context.Context, request *domain.DepartmentRequest) (*domain.Department, error) {
	if err := s.validator.Struct(request); err != nil {
		return nil, err
	}

	department, err := s.store.CreateDepartment(ctx, request)
	if err != nil {
		return nil, sourceError(err)
	}
	return department, nil
}

func (s *PanelService) UpdateDepartment(ctx context.Context, id string, request *domain.DepartmentRequest) (*domain.Department, error) {
	if err := s.validator.Struct(request); err != nil {
		return nil, err
	}

	department, err := s.store.UpdateDepartment(ctx, id, request)
	if err != nil {
		return nil, sourceError(err)
	}
	return department, nil
}

func (s *PanelService) CreateEmployee(ctx context.Context, request *domain.CreateEmployeeRequest) (*domain.Employee, error) {
	if err := s.validator.Struct(request); err != nil {
		return nil, err
	}

	employee, err := s.store.CreateEmployee(ctx, request)
	if err != nil {
		return nil, sourceError(err)
	}
	return employee, nil
}

// sourceError keeps business errors as they are and tags anything else as a backend failure
func sourceError(err error) error {
	if customError.Code(err) != "" {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return customError.WrapBackendError(err)
}
