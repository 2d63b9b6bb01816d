// Package aggregate turns flat student and fee-payment snapshots into the
// derived views shown on the fees dashboard. Every function here is pure:
// same input, same output, no I/O, no errors on empty or partial input.
package aggregate

import (
	"github.com/segyhp/feedesk/internal/domain"

	"github.com/shopspring/decimal"
)

// PaidAmount sums paidAmount (falling back to amount) over the paid payments of one student
func PaidAmount(studentID string, payments []domain.FeePayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.StudentID == studentID && p.IsPaid() {
			total = total.Add(p.Settled())
		}
	}
	return total
}

// ComputeDueFees returns one record per student whose total fee exceeds what they paid.
// Student order is preserved. Payments referencing unknown students are ignored.
func ComputeDueFees(students []domain.Student, payments []domain.FeePayment) []domain.DueRecord {
	paid := paidByStudent(payments)

	dues := make([]domain.DueRecord, 0)
	for _, s := range students {
		p := paid[s.ID]
		due := s.TotalFee.Sub(p)
		if due.IsPositive() {
			dues = append(dues, domain.DueRecord{
				Student:    s,
				PaidAmount: p,
				DueAmount:  due,
			})
		}
	}
	return dues
}

// Overpayments returns students whose paid total exceeds their total fee.
// DueAmount is negative on every returned record.
func Overpayments(students []domain.Student, payments []domain.FeePayment) []domain.DueRecord {
	paid := paidByStudent(payments)

	var over []domain.DueRecord
	for _, s := range students {
		p := paid[s.ID]
		due := s.TotalFee.Sub(p)
		if due.IsNegative() {
			over = append(over, domain.DueRecord{
				Student:    s,
				PaidAmount: p,
				DueAmount:  due,
			})
		}
	}
	return over
}

// Totals counts the due records and sums their due amounts
func Totals(dues []domain.DueRecord) domain.DueTotals {
	sum := decimal.Zero
	for _, d := range dues {
		sum = sum.Add(d.DueAmount)
	}
	return domain.DueTotals{Students: len(dues), Amount: sum}
}

// paidByStudent indexes paid sums by student ID in a single pass.
// Orphan IDs land in the map too but are never looked up.
func paidByStudent(payments []domain.FeePayment) map[string]decimal.Decimal {
	paid := make(map[string]decimal.Decimal)
	for _, p := range payments {
		if !p.IsPaid() {
			continue
		}
		paid[p.StudentID] = paid[p.StudentID].Add(p.Settled())
	}
	return paid
}
