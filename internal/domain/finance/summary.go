package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SummaryParts are the independently queried totals behind a FinancialSummary
type SummaryParts struct {
	TotalSales              decimal.Decimal
	TotalReceived           decimal.Decimal
	Receivables             decimal.Decimal
	TotalPurchases          decimal.Decimal
	TotalManufacturingCosts decimal.Decimal
	FundsTransferred        decimal.Decimal
}

// FinancialSummary is the totals card for a date range
type FinancialSummary struct {
	DateFrom                *time.Time      `json:"date_from,omitempty"`
	DateTo                  *time.Time      `json:"date_to,omitempty"`
	TotalSales              decimal.Decimal `json:"total_sales"`
	TotalReceived           decimal.Decimal `json:"total_received"`
	Receivables             decimal.Decimal `json:"receivables"`
	TotalPurchases          decimal.Decimal `json:"total_purchases"`
	TotalManufacturingCosts decimal.Decimal `json:"total_manufacturing_costs"`
	TotalExpenses           decimal.Decimal `json:"total_expenses"`
	GrossProfit             decimal.Decimal `json:"gross_profit"`
	NetCashFlow             decimal.Decimal `json:"net_cash_flow"`
	FundsTransferred        decimal.Decimal `json:"funds_transferred"`
	Monthly                 []MonthlyRow    `json:"monthly"`
}

// NewFinancialSummary derives the computed totals from the queried parts
func NewFinancialSummary(from, to *time.Time, p SummaryParts, monthly []MonthlyRow) FinancialSummary {
	expenses := p.TotalPurchases.Add(p.TotalManufacturingCosts)
	if monthly == nil {
		monthly = []MonthlyRow{}
	}
	return FinancialSummary{
		DateFrom:                from,
		DateTo:                  to,
		TotalSales:              p.TotalSales,
		TotalReceived:           p.TotalReceived,
		Receivables:             p.Receivables,
		TotalPurchases:          p.TotalPurchases,
		TotalManufacturingCosts: p.TotalManufacturingCosts,
		TotalExpenses:           expenses,
		GrossProfit:             p.TotalSales.Sub(expenses),
		NetCashFlow:             p.TotalReceived.Sub(expenses),
		FundsTransferred:        p.FundsTransferred,
		Monthly:                 monthly,
	}
}

// MonthAmount is one month's aggregate of a single source
type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyRow is one month of the breakdown, month formatted YYYY-MM
type MonthlyRow struct {
	Month    string          `json:"month"`
	Sales    decimal.Decimal `json:"sales"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// MergeMonthly joins per-source monthly sums into rows ordered by month
func MergeMonthly(sales, purchases, costs []MonthAmount) []MonthlyRow {
	rows := map[string]*MonthlyRow{}
	get := func(m string) *MonthlyRow {
		r, ok := rows[m]
		if !ok {
			r = &MonthlyRow{Month: m, Sales: decimal.Zero, Expenses: decimal.Zero}
			rows[m] = r
		}
		return r
	}
	for _, s := range sales {
		r := get(s.Month)
		r.Sales = r.Sales.Add(s.Amount)
	}
	for _, e := range append(append([]MonthAmount{}, purchases...), costs...) {
		r := get(e.Month)
		r.Expenses = r.Expenses.Add(e.Amount)
	}

	out := make([]MonthlyRow, 0, len(rows))
	for _, r := range rows {
		r.Profit = r.Sales.Sub(r.Expenses)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
