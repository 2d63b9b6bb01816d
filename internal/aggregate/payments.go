package aggregate

import (
	"time"

	"github.com/segyhp/feedesk/internal/domain"
)

// SelectPaidPayments keeps paid payments regardless of date
func SelectPaidPayments(payments []domain.FeePayment) []domain.FeePayment {
	paid := make([]domain.FeePayment, 0)
	for _, p := range payments {
		if p.IsPaid() {
			paid = append(paid, p)
		}
	}
	return paid
}

// SelectPaidInWindow keeps paid payments whose paid date falls in w
func SelectPaidInWindow(payments []domain.FeePayment, w domain.Window) []domain.FeePayment {
	return SelectByDateWindow(SelectPaidPayments(payments), w, func(p domain.FeePayment) *time.Time {
		return p.PaidDate
	})
}

// SelectPayments applies the configured payments-tab mode
func SelectPayments(payments []domain.FeePayment, w domain.Window, mode string) []domain.FeePayment {
	if mode == domain.PaymentsPaidInWindow {
		return SelectPaidInWindow(payments, w)
	}
	return SelectPaidPayments(payments)
}

// JoinPayments attaches student name and roll number to each payment.
// Orphans keep their place with placeholder values.
func JoinPayments(payments []domain.FeePayment, students []domain.Student) []domain.PaymentView {
	byID := make(map[string]domain.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}

	views := make([]domain.PaymentView, 0, len(payments))
	for _, p := range payments {
		view := domain.PaymentView{Payment: p}
		if s, ok := byID[p.StudentID]; ok {
			view.StudentName = s.Name
			view.RollNumber = s.RollNumber
		} else {
			view.StudentName = domain.UnknownStudent
			view.RollNumber = domain.UnknownStudent
			view.Orphan = true
		}
		views = append(views, view)
	}
	return views
}
