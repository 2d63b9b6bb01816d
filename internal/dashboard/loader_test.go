package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/feedesk/internal/domain"
	"github.com/segyhp/feedesk/internal/mocks"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

// Friday 2024-03-15 10:00 UTC
func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
}

const (
	deskA = "desk-a"
	deskB = "desk-b"
)

func ptr(t time.Time) *time.Time { return &t }

func fixtureStudents() []domain.Student {
	return []domain.Student{
		{ID: "S1", Name: "Amina Otieno", RollNumber: "R-001", TotalFee: decimal.NewFromInt(50000), CreatedAt: ptr(time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC))},
		{ID: "S2", Name: "Brian Kato", RollNumber: "R-002", TotalFee: decimal.NewFromInt(10000), CreatedAt: ptr(time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC))},
		{ID: "S3", Name: "Chloe Njeri", RollNumber: "R-003", TotalFee: decimal.NewFromInt(5000), CreatedAt: ptr(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))},
	}
}

func fixtureFees() []domain.FeePayment {
	paid20k := decimal.NewFromInt(20000)
	return []domain.FeePayment{
		{ID: "F1", StudentID: "S1", Status: domain.FeeStatusPaid, Amount: decimal.NewFromInt(20000), PaidAmount: &paid20k, PaidDate: ptr(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))},
		{ID: "F2", StudentID: "S1", Status: domain.FeeStatusPending, Amount: decimal.NewFromInt(30000)},
		{ID: "F3", StudentID: "S2", Status: domain.FeeStatusPaid, Amount: decimal.NewFromInt(10000), PaidDate: ptr(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))},
		{ID: "F4", StudentID: "S3", Status: domain.FeeStatusPaid, Amount: decimal.NewFromInt(6000), PaidDate: ptr(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC))},
		{ID: "F5", StudentID: "GHOST", Status: domain.FeeStatusPaid, Amount: decimal.NewFromInt(100)},
	}
}

func newTestLoader(source *mocks.MockStore, mode string) *Loader {
	return NewLoader(source, Options{
		PaymentsMode:     mode,
		FlagOverpayments: true,
		Now:              fixedNow,
	}, nil)
}

func TestLoader_Load(t *testing.T) {
	source := &mocks.MockStore{}
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil)
	source.On("ListFees", mock.Anything).Return(fixtureFees(), nil)

	loader := newTestLoader(source, domain.PaymentsAllPaid)

	snapshot, err := loader.Load(context.Background(), deskA, domain.WindowWeek)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snapshot.Generation)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), snapshot.Window.Start)

	require.Len(t, snapshot.DueFees, 1)
	assert.Equal(t, "S1", snapshot.DueFees[0].Student.ID)
	assert.True(t, snapshot.DueFees[0].DueAmount.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, 1, snapshot.DueTotals.Students)

	require.Len(t, snapshot.NewStudents, 2)
	assert.Equal(t, "S1", snapshot.NewStudents[0].ID)
	assert.Equal(t, "S3", snapshot.NewStudents[1].ID)

	require.Len(t, snapshot.Payments, 4)
	assert.Equal(t, domain.UnknownStudent, snapshot.Payments[3].StudentName)

	require.Len(t, snapshot.Overpaid, 1)
	assert.Equal(t, "S3", snapshot.Overpaid[0].Student.ID)
	require.Len(t, snapshot.Warnings, 1)
	assert.Contains(t, snapshot.Warnings[0], "overpaid by 1000.00")

	assert.Same(t, snapshot, loader.Current(deskA))
	source.AssertExpectations(t)
}

func TestLoader_Load_PaidInWindowMode(t *testing.T) {
	source := &mocks.MockStore{}
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil)
	source.On("ListFees", mock.Anything).Return(fixtureFees(), nil)

	loader := newTestLoader(source, domain.PaymentsPaidInWindow)

	snapshot, err := loader.Load(context.Background(), deskA, domain.WindowToday)
	require.NoError(t, err)

	require.Len(t, snapshot.Payments, 1)
	assert.Equal(t, "F1", snapshot.Payments[0].Payment.ID)
	assert.Equal(t, "Amina Otieno", snapshot.Payments[0].StudentName)
}

func TestLoader_Load_InvalidWindow(t *testing.T) {
	source := &mocks.MockStore{}
	loader := newTestLoader(source, domain.PaymentsAllPaid)

	_, err := loader.Load(context.Background(), deskA, "fortnight")

	assert.True(t, errors.Is(err, customError.ErrInvalidWindow))
	source.AssertNotCalled(t, "ListStudents", mock.Anything)
	assert.Nil(t, loader.Current(deskA))
}

func TestLoader_Load_FeesFailureKeepsStudentViews(t *testing.T) {
	source := &mocks.MockStore{}
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil)
	source.On("ListFees", mock.Anything).Return(nil, errors.New("connection refused"))

	loader := newTestLoader(source, domain.PaymentsAllPaid)

	snapshot, err := loader.Load(context.Background(), deskA, domain.WindowMonth)
	require.NoError(t, err)

	assert.Empty(t, snapshot.DueFees)
	assert.NotNil(t, snapshot.DueFees)
	assert.Empty(t, snapshot.Payments)
	assert.Len(t, snapshot.NewStudents, 2)
	require.Len(t, snapshot.Warnings, 1)
	assert.Contains(t, snapshot.Warnings[0], "fee payments unavailable")
}

func TestLoader_Load_StudentsFailureKeepsPayments(t *testing.T) {
	source := &mocks.MockStore{}
	source.On("ListStudents", mock.Anything).Return(nil, errors.New("timeout"))
	source.On("ListFees", mock.Anything).Return(fixtureFees(), nil)

	loader := newTestLoader(source, domain.PaymentsAllPaid)

	snapshot, err := loader.Load(context.Background(), deskA, domain.WindowYear)
	require.NoError(t, err)

	assert.Empty(t, snapshot.DueFees)
	assert.Empty(t, snapshot.NewStudents)
	require.Len(t, snapshot.Payments, 4)
	for _, p := range snapshot.Payments {
		assert.Equal(t, domain.UnknownStudent, p.StudentName)
	}
	assert.Contains(t, snapshot.Warnings[0], "students unavailable")
}

func TestLoader_Load_SupersededLoadIsDiscarded(t *testing.T) {
	source := &mocks.MockStore{}
	started := make(chan struct{})
	release := make(chan struct{})

	stale := []domain.Student{{ID: "OLD", TotalFee: decimal.NewFromInt(1)}}
	source.On("ListStudents", mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return(stale, nil).Once()
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil).Once()
	source.On("ListFees", mock.Anything).Return(fixtureFees(), nil)

	loader := newTestLoader(source, domain.PaymentsAllPaid)

	type result struct {
		snapshot *domain.Dashboard
		err      error
	}
	first := make(chan result, 1)
	go func() {
		snapshot, err := loader.Load(context.Background(), deskA, domain.WindowToday)
		first <- result{snapshot, err}
	}()

	<-started
	newer, err := loader.Load(context.Background(), deskA, domain.WindowMonth)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), newer.Generation)

	close(release)
	old := <-first

	assert.True(t, errors.Is(old.err, ErrSuperseded))
	assert.Nil(t, old.snapshot)

	current := loader.Current(deskA)
	require.NotNil(t, current)
	assert.Equal(t, uint64(2), current.Generation)
	assert.Equal(t, domain.WindowMonth, current.Window.Kind)
}

func TestLoader_Load_ViewersDoNotSupersedeEachOther(t *testing.T) {
	source := &mocks.MockStore{}
	started := make(chan struct{})
	release := make(chan struct{})

	source.On("ListStudents", mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return(fixtureStudents(), nil).Once()
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil).Once()
	source.On("ListFees", mock.Anything).Return(fixtureFees(), nil)

	loader := newTestLoader(source, domain.PaymentsAllPaid)

	type result struct {
		snapshot *domain.Dashboard
		err      error
	}
	first := make(chan result, 1)
	go func() {
		snapshot, err := loader.Load(context.Background(), deskA, domain.WindowToday)
		first <- result{snapshot, err}
	}()

	<-started
	other, err := loader.Load(context.Background(), deskB, domain.WindowWeek)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), other.Generation)

	close(release)
	mine := <-first

	require.NoError(t, mine.err)
	assert.Equal(t, domain.WindowToday, mine.snapshot.Window.Kind)
	assert.Same(t, mine.snapshot, loader.Current(deskA))
	assert.Same(t, other, loader.Current(deskB))
	assert.Equal(t, 2, loader.Viewers())
}

func TestLoader_EvictsIdleViewers(t *testing.T) {
	source := &mocks.MockStore{}
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil)
	source.On("ListFees", mock.Anything).Return(fixtureFees(), nil)

	clock := fixedNow()
	loader := NewLoader(source, Options{
		ViewerTTL: time.Minute,
		Now:       func() time.Time { return clock },
	}, nil)

	_, err := loader.Load(context.Background(), deskA, domain.WindowToday)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = loader.Load(context.Background(), deskB, domain.WindowToday)
	require.NoError(t, err)

	assert.Nil(t, loader.Current(deskA))
	assert.NotNil(t, loader.Current(deskB))
	assert.Equal(t, 1, loader.Viewers())
}

func TestLoader_Load_CallerCancellation(t *testing.T) {
	source := &mocks.MockStore{}
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil)
	source.On("ListFees", mock.Anything).Return(fixtureFees(), nil)

	loader := newTestLoader(source, domain.PaymentsAllPaid)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx, deskA, domain.WindowToday)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, loader.Current(deskA))
}

func TestComputeDigest(t *testing.T) {
	source := &mocks.MockStore{}
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil)
	source.On("ListFees", mock.Anything).Return(fixtureFees(), nil)

	digest, err := ComputeDigest(context.Background(), source, fixedNow())
	require.NoError(t, err)

	require.Len(t, digest.DueFees, 1)
	assert.Equal(t, 1, digest.Totals.Students)
	assert.True(t, digest.Totals.Amount.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, fixedNow(), digest.ComputedAt)
}

func TestComputeDigest_FailsWhenEitherSideFails(t *testing.T) {
	source := &mocks.MockStore{}
	source.On("ListStudents", mock.Anything).Return(fixtureStudents(), nil)
	source.On("ListFees", mock.Anything).Return(nil, errors.New("boom"))

	_, err := ComputeDigest(context.Background(), source, fixedNow())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list fees")
}
