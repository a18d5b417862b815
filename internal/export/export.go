// Package export renders registrations and the ledger as CSV or XLSX.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ledger"
	"selfreg-backend/internal/lifecycle"
)

const dateLayout = "2006-01-02"

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

var registrationHeader = []string{
	"ID", "Customer ID", "Name", "Mobile", "Address", "Ward", "Agent/PRO", "Category",
	"Panchayath", "Fee Paid", "Status", "Days Remaining", "Approved Date", "Approved By", "Created At",
}

func registrationRows(items []domain.Registration, now time.Time) [][]any {
	rows := make([][]any, 0, len(items))
	for _, reg := range items {
		days := ""
		if aging, ok := lifecycle.AgingOf(reg, now); ok {
			days = strconv.Itoa(aging.DaysRemaining)
		}
		approved := ""
		if reg.ApprovedDate != nil {
			approved = reg.ApprovedDate.Format(dateLayout)
		}
		rows = append(rows, []any{
			reg.ID,
			reg.CustomerID,
			reg.Name,
			reg.MobileNumber,
			reg.Address,
			reg.Ward,
			deref(reg.AgentPro),
			reg.CategoryName,
			reg.Panchayath,
			reg.FeePaid,
			string(reg.Status),
			days,
			approved,
			deref(reg.ApprovedBy),
			reg.CreatedAt.Format(dateLayout),
		})
	}
	return rows
}

// RegistrationsCSV writes one row per registration. Days remaining is blank
// for registrations that are not pending.
func RegistrationsCSV(items []domain.Registration, now time.Time) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write(registrationHeader)
	for _, row := range registrationRows(items, now) {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func RegistrationsXLSX(items []domain.Registration, now time.Time) ([]byte, error) {
	return workbook(sheet{
		name:   "Registrations",
		header: registrationHeader,
		widths: []float64{8, 14, 24, 14, 30, 8, 16, 20, 20, 10, 10, 14, 14, 14, 12},
		rows:   registrationRows(items, now),
	})
}

// LedgerXLSX writes a balance summary followed by transfer and expense sheets.
func LedgerXLSX(totals ledger.Totals, transfers []domain.CashTransaction, expenses []domain.Expense, currency string) ([]byte, error) {
	b := ledger.Compute(totals)
	summary := sheet{
		name:   "Summary",
		header: []string{"Item", "Amount (" + currency + ")"},
		widths: []float64{28, 18},
		rows: [][]any{
			{"Approved fees", totals.ApprovedFees},
			{"Transferred to bank", totals.Transfers},
			{"Cash expenses", totals.CashExpenses},
			{"Bank expenses", totals.BankExpenses},
			{"Cash in hand", b.CashInHand},
			{"Cash at bank", b.CashAtBank},
		},
	}

	tx := sheet{
		name:   "Transfers",
		header: []string{"ID", "Amount", "From", "To", "Remarks", "Recorded At"},
		widths: []float64{8, 14, 12, 12, 32, 20},
	}
	for _, t := range transfers {
		tx.rows = append(tx.rows, []any{t.ID, t.Amount, dateOrBlank(t.FromDate), dateOrBlank(t.ToDate), deref(t.Remarks), t.CreatedAt.Format(time.DateTime)})
	}

	ex := sheet{
		name:   "Expenses",
		header: []string{"ID", "Amount", "Method", "Description", "Date"},
		widths: []float64{8, 14, 10, 36, 12},
	}
	for _, e := range expenses {
		ex.rows = append(ex.rows, []any{e.ID, e.Amount, string(e.PaymentMethod), e.Description, e.ExpenseDate.Format(dateLayout)})
	}
	return workbook(summary, tx, ex)
}

func workbook(sheets ...sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		for c, v := range s.header {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			_ = f.SetCellValue(s.name, cell, v)
		}
		for r, row := range s.rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				_ = f.SetCellValue(s.name, cell, v)
			}
		}
		for c, width := range s.widths {
			col, _ := excelize.ColumnNumberToName(c + 1)
			_ = f.SetColWidth(s.name, col, col, width)
		}
		last, _ := excelize.CoordinatesToCellName(len(s.header), 1)
		_ = f.SetCellStyle(s.name, "A1", last, style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func dateOrBlank(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
