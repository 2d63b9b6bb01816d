// Package dashboard loads students and fee payments together and publishes the
// derived fee views as one snapshot per window selection.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/segyhp/feedesk/internal/aggregate"
	"github.com/segyhp/feedesk/internal/domain"
	"github.com/segyhp/feedesk/internal/log"
	"github.com/segyhp/feedesk/internal/repository"
)

// ErrSuperseded is returned by a load that a newer Load call from the same viewer
// replaced before it finished
var ErrSuperseded = errors.New("dashboard load superseded by a newer selection")

// DefaultViewerTTL is how long an idle viewer's state is kept
const DefaultViewerTTL = 30 * time.Minute

type Options struct {
	PaymentsMode     string
	Location         *time.Location
	FlagOverpayments bool
	ViewerTTL        time.Duration
	Now              func() time.Time
}

// Loader owns the published dashboards, one per viewer. Each Load takes the
// viewer's next generation and cancels that viewer's previous load; only the
// newest generation of a viewer may publish. Viewers never cancel each other.
type Loader struct {
	source repository.Source
	opts   Options
	logger *log.Logger

	mu      sync.Mutex
	viewers map[string]*viewerState
}

type viewerState struct {
	generation uint64
	cancel     context.CancelFunc
	current    *domain.Dashboard
	lastSeen   time.Time
}

func NewLoader(source repository.Source, opts Options, logger *log.Logger) *Loader {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PaymentsMode == "" {
		opts.PaymentsMode = domain.PaymentsAllPaid
	}
	if opts.ViewerTTL <= 0 {
		opts.ViewerTTL = DefaultViewerTTL
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Loader{
		source:  source,
		opts:    opts,
		logger:  logger.WithComponent(log.ComponentDashboard),
		viewers: make(map[string]*viewerState),
	}
}

// Load fetches students and fees concurrently, waits for both, and publishes the
// combined snapshot for viewer unless the same viewer started a newer Load meanwhile.
func (l *Loader) Load(ctx context.Context, viewer, kind string) (*domain.Dashboard, error) {
	now := l.opts.Now().In(l.opts.Location)
	window, err := aggregate.WindowFor(kind, now)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	state, gen := l.begin(viewer, cancel)

	var (
		students    []domain.Student
		fees        []domain.FeePayment
		studentsErr error
		feesErr     error
	)

	// Fetch failures stay per-view; only cancellation aborts the whole load.
	var g errgroup.Group
	g.Go(func() error {
		students, studentsErr = l.source.ListStudents(loadCtx)
		return loadCtx.Err()
	})
	g.Go(func() error {
		fees, feesErr = l.source.ListFees(loadCtx)
		return loadCtx.Err()
	})
	if err := g.Wait(); err != nil {
		if !l.abandon(viewer, state, gen) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	snapshot := l.build(gen, window, now, students, studentsErr, fees, feesErr)

	if !l.publish(viewer, state, snapshot) {
		l.logger.DebugContext(ctx, "discarding stale dashboard",
			log.FieldViewer, viewer, log.FieldGeneration, gen, log.FieldWindow, kind)
		return nil, ErrSuperseded
	}

	l.logger.InfoContext(ctx, "dashboard published",
		log.FieldViewer, viewer,
		log.FieldGeneration, gen,
		log.FieldWindow, kind,
		log.FieldCount, len(snapshot.DueFees),
	)
	return snapshot, nil
}

// Current returns the viewer's last published snapshot, or nil before its first load
func (l *Loader) Current(viewer string) *domain.Dashboard {
	l.mu.Lock()
	defer l.mu.Unlock()

	if state, ok := l.viewers[viewer]; ok {
		return state.current
	}
	return nil
}

// Viewers returns how many viewers currently hold state
func (l *Loader) Viewers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.viewers)
}

func (l *Loader) begin(viewer string, cancel context.CancelFunc) (*viewerState, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.opts.Now()
	l.evictIdle(now)

	state, ok := l.viewers[viewer]
	if !ok {
		state = &viewerState{}
		l.viewers[viewer] = state
	}
	if state.cancel != nil {
		state.cancel()
	}
	state.cancel = cancel
	state.generation++
	state.lastSeen = now
	return state, state.generation
}

// evictIdle drops viewers with no load in flight that were not seen within the TTL.
// Caller holds l.mu.
func (l *Loader) evictIdle(now time.Time) {
	for viewer, state := range l.viewers {
		if state.cancel == nil && now.Sub(state.lastSeen) > l.opts.ViewerTTL {
			delete(l.viewers, viewer)
		}
	}
}

// abandon reports whether gen is still the viewer's newest load and, if so,
// clears its cancel func so the idle viewer can be evicted later
func (l *Loader) abandon(viewer string, state *viewerState, gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.viewers[viewer] != state || state.generation != gen {
		return false
	}
	state.cancel = nil
	return true
}

func (l *Loader) publish(viewer string, state *viewerState, snapshot *domain.Dashboard) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.viewers[viewer] != state || state.generation != snapshot.Generation {
		return false
	}
	state.current = snapshot
	state.cancel = nil
	state.lastSeen = l.opts.Now()
	return true
}

func (l *Loader) build(
	gen uint64,
	window domain.Window,
	now time.Time,
	students []domain.Student,
	studentsErr error,
	fees []domain.FeePayment,
	feesErr error,
) *domain.Dashboard {
	snapshot := &domain.Dashboard{
		Generation:   gen,
		Window:       window,
		PaymentsMode: l.opts.PaymentsMode,
		DueFees:      []domain.DueRecord{},
		NewStudents:  []domain.Student{},
		Payments:     []domain.PaymentView{},
		LoadedAt:     now,
	}

	if studentsErr != nil {
		l.logger.Warn("students fetch failed", log.FieldGeneration, gen, log.FieldError, studentsErr)
		snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("students unavailable: %v", studentsErr))
		students = nil
	} else {
		snapshot.NewStudents = aggregate.NewStudents(students, window)
	}

	if feesErr != nil {
		l.logger.Warn("fees fetch failed", log.FieldGeneration, gen, log.FieldError, feesErr)
		snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("fee payments unavailable: %v", feesErr))
	} else {
		paid := aggregate.SelectPayments(fees, window, l.opts.PaymentsMode)
		snapshot.Payments = aggregate.JoinPayments(paid, students)
	}

	// The due list needs both sides; half the data would overstate every balance.
	if studentsErr == nil && feesErr == nil {
		snapshot.DueFees = aggregate.ComputeDueFees(students, fees)
		if l.opts.FlagOverpayments {
			snapshot.Overpaid = aggregate.Overpayments(students, fees)
			for _, o := range snapshot.Overpaid {
				l.logger.Warn("student paid more than total fee",
					log.FieldStudentID, o.Student.ID,
					"overpaid_by", o.DueAmount.Neg().String(),
				)
				snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf(
					"student %s (%s) overpaid by %s", o.Student.Name, o.Student.RollNumber, o.DueAmount.Neg().StringFixed(2)))
			}
		}
	}
	snapshot.DueTotals = aggregate.Totals(snapshot.DueFees)

	return snapshot
}
