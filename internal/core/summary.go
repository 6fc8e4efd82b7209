package core

import "github.com/shopspring/decimal"

// Balance is the all-time income minus expense of one user.
type Balance struct {
	Balance decimal.Decimal `json:"balance"`
}

// Overview compares the calendar month containing a date with the month before it.
type Overview struct {
	TotalExpense          decimal.Decimal `json:"totalExpense"`
	TotalIncome           decimal.Decimal `json:"totalIncome"`
	TotalSaving           decimal.Decimal `json:"totalSaving"`
	TotalExpensePrevMonth decimal.Decimal `json:"totalExpensePrevMonth"`
	TotalIncomePrevMonth  decimal.Decimal `json:"totalIncomePrevMonth"`
	TotalSavingPrevMonth  decimal.Decimal `json:"totalSavingPrevMonth"`
}
