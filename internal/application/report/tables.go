package report

import (
	"context"
	"fmt"
	"time"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/report"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/export"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func (s *ExportService) table(ctx context.Context, actor identity.Actor, kind report.Kind, filter shared.Filter) (*export.Table, error) {
	t := &export.Table{Title: kind.Title(), Subtitle: dateRange(filter)}
	var (
		total int64
		err   error
	)
	switch kind {
	case report.KindActivityLogs:
		total, err = s.activityLogs(ctx, t, filter)
	case report.KindTransfers:
		total, err = s.transfers(ctx, t, filter)
	case report.KindInventory:
		total, err = s.inventory(ctx, t, filter)
	case report.KindBatches:
		total, err = s.batches(ctx, t, filter)
	case report.KindSales:
		total, err = s.sales(ctx, t, filter)
	case report.KindPurchases:
		total, err = s.purchases(ctx, t, filter)
	case report.KindFunds:
		total, err = s.funds(ctx, t, filter)
	case report.KindFinancialSummary:
		err = s.financialSummary(ctx, actor, t, filter)
	}
	if err != nil {
		return nil, err
	}
	if total > int64(len(t.Rows)) {
		t.Subtitle += fmt.Sprintf(" (first %d of %d rows)", len(t.Rows), total)
	}
	return t, nil
}

func (s *ExportService) activityLogs(ctx context.Context, t *export.Table, filter shared.Filter) (int64, error) {
	rows, total, err := s.repos.ActivityLogs().FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	t.Columns = []export.Column{{Header: "Time"}, {Header: "User"}, {Header: "Action"}, {Header: "Module"}, {Header: "Description"}, {Header: "IP Address"}}
	for _, r := range rows {
		user := r.FullName
		if user == "" {
			user = "system"
		}
		t.Rows = append(t.Rows, []string{r.CreatedAt.Format(dateTimeLayout), user, r.Action, r.Module, r.Description, r.IPAddress})
	}
	return total, nil
}

func (s *ExportService) transfers(ctx context.Context, t *export.Table, filter shared.Filter) (int64, error) {
	rows, total, err := s.repos.Transfers().FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	t.Columns = []export.Column{{Header: "Date"}, {Header: "SKU"}, {Header: "Product"}, {Header: "From"}, {Header: "To"}, {Header: "Quantity", Numeric: true}, {Header: "By"}, {Header: "Notes"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.TransferDate.Format(dateTimeLayout), r.ProductSKU, r.ProductName,
			string(r.FromLocation), string(r.ToLocation), qty(r.Quantity), r.InitiatedByName, r.Notes,
		})
	}
	return total, nil
}

func (s *ExportService) inventory(ctx context.Context, t *export.Table, filter shared.Filter) (int64, error) {
	rows, total, err := s.repos.Stock().FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	t.Columns = []export.Column{{Header: "SKU"}, {Header: "Product"}, {Header: "Location"}, {Header: "Quantity", Numeric: true}, {Header: "Updated"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.ProductSKU, r.ProductName, string(r.Location), qty(r.Quantity), r.UpdatedAt.Format(dateTimeLayout)})
	}
	return total, nil
}

func (s *ExportService) batches(ctx context.Context, t *export.Table, filter shared.Filter) (int64, error) {
	rows, total, err := s.repos.Batches().FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	t.Columns = []export.Column{{Header: "Batch"}, {Header: "SKU"}, {Header: "Product"}, {Header: "Quantity", Numeric: true}, {Header: "Status"}, {Header: "Started"}, {Header: "Expected"}, {Header: "Completed"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.BatchNumber, r.ProductSKU, r.ProductName, qty(r.QuantityProduced), string(r.Status),
			r.StartDate.Format(dateLayout), optionalDate(r.ExpectedCompletionDate), optionalDate(r.CompletionDate),
		})
	}
	return total, nil
}

func (s *ExportService) sales(ctx context.Context, t *export.Table, filter shared.Filter) (int64, error) {
	rows, total, err := s.repos.Sales().FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	t.Columns = []export.Column{
		{Header: "Invoice"}, {Header: "Date"}, {Header: "Customer"}, {Header: "Items", Numeric: true},
		{Header: "Total", Numeric: true}, {Header: "Discount", Numeric: true}, {Header: "Net", Numeric: true},
		{Header: "Paid", Numeric: true}, {Header: "Status"}, {Header: "Sold By"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.InvoiceNumber, r.SaleDate.Format(dateLayout), r.CustomerName, fmt.Sprint(r.ItemCount),
			money(r.TotalAmount), money(r.DiscountAmount), money(r.NetAmount), money(r.PaidAmount),
			string(r.PaymentStatus), r.CreatedByName,
		})
	}
	return total, nil
}

func (s *ExportService) purchases(ctx context.Context, t *export.Table, filter shared.Filter) (int64, error) {
	rows, total, err := s.repos.Purchases().FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	t.Columns = []export.Column{
		{Header: "Date"}, {Header: "Material"}, {Header: "Supplier"}, {Header: "Quantity", Numeric: true}, {Header: "Unit"},
		{Header: "Unit Price", Numeric: true}, {Header: "Total", Numeric: true}, {Header: "Invoice"}, {Header: "Purchased By"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.PurchaseDate.Format(dateLayout), r.MaterialCode + " " + r.MaterialName, r.SupplierName, qty(r.Quantity), r.MaterialUnit,
			money(r.UnitPrice), money(r.TotalAmount), r.InvoiceNumber, r.PurchasedByName,
		})
	}
	return total, nil
}

func (s *ExportService) funds(ctx context.Context, t *export.Table, filter shared.Filter) (int64, error) {
	rows, total, err := s.repos.Funds().FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	t.Columns = []export.Column{{Header: "Date"}, {Header: "From"}, {Header: "To"}, {Header: "Amount", Numeric: true}, {Header: "Description"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.TransferDate.Format(dateTimeLayout), party(r.FromName, r.FromRole), party(r.ToName, r.ToRole), money(r.Amount), r.Description,
		})
	}
	return total, nil
}

func (s *ExportService) financialSummary(ctx context.Context, actor identity.Actor, t *export.Table, filter shared.Filter) error {
	sum, err := s.summary.Summary(ctx, actor, filter)
	if err != nil {
		return err
	}
	t.Columns = []export.Column{{Header: "Item"}, {Header: "Amount", Numeric: true}}
	for _, line := range summaryLines(sum) {
		t.Rows = append(t.Rows, []string{line.label, money(line.amount)})
	}
	for _, m := range sum.Monthly {
		t.Rows = append(t.Rows,
			[]string{m.Month + " sales", money(m.Sales)},
			[]string{m.Month + " expenses", money(m.Expenses)},
			[]string{m.Month + " profit", money(m.Profit)},
		)
	}
	return nil
}

type summaryLine struct {
	label  string
	amount decimal.Decimal
}

func summaryLines(s finance.FinancialSummary) []summaryLine {
	return []summaryLine{
		{"Total sales", s.TotalSales},
		{"Total received", s.TotalReceived},
		{"Receivables", s.Receivables},
		{"Raw material purchases", s.TotalPurchases},
		{"Manufacturing costs", s.TotalManufacturingCosts},
		{"Total expenses", s.TotalExpenses},
		{"Gross profit", s.GrossProfit},
		{"Net cash flow", s.NetCashFlow},
		{"Funds transferred", s.FundsTransferred},
	}
}

func dateRange(f shared.Filter) string {
	switch {
	case f.DateFrom != nil && f.DateTo != nil:
		return fmt.Sprintf("%s to %s", f.DateFrom.Format(dateLayout), f.DateTo.Format(dateLayout))
	case f.DateFrom != nil:
		return "From " + f.DateFrom.Format(dateLayout)
	case f.DateTo != nil:
		return "Until " + f.DateTo.Format(dateLayout)
	}
	return "All dates"
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func party(name, role string) string {
	if role == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, role)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func qty(d decimal.Decimal) string {
	return d.Round(4).String()
}
