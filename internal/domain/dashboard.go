package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window kinds accepted by the dashboard tabs
const (
	WindowToday = "today"
	WindowWeek  = "week"
	WindowMonth = "month"
	WindowYear  = "year"
)

// Payments tab modes
const (
	PaymentsAllPaid      = "all_paid"
	PaymentsPaidInWindow = "paid_in_window"
)

// Window is an inclusive [Start, End] range; End is the last millisecond of the period
type Window struct {
	Kind  string    `json:"kind"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DueTotals summarizes the due list for the dashboard header
type DueTotals struct {
	Students int             `json:"students"`
	Amount   decimal.Decimal `json:"amount"`
}

// Dashboard is the combined view published after both fetches complete
type Dashboard struct {
	Generation   uint64        `json:"generation"`
	Window       Window        `json:"window"`
	PaymentsMode string        `json:"paymentsMode"`
	DueFees      []DueRecord   `json:"dueFees"`
	DueTotals    DueTotals     `json:"dueTotals"`
	NewStudents  []Student     `json:"newStudents"`
	Payments     []PaymentView `json:"payments"`
	Overpaid     []DueRecord   `json:"overpaid,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
	LoadedAt     time.Time     `json:"loadedAt"`
}

// Digest is the precomputed due-fee list kept in the cache
type Digest struct {
	DueFees    []DueRecord `json:"dueFees"`
	Totals     DueTotals   `json:"totals"`
	ComputedAt time.Time   `json:"computedAt"`
}
