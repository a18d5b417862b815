package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/export"
	"selfreg-backend/internal/service"
)

// LedgerHandler serves the accounts module: balances, cash transfers and expenses.
type LedgerHandler struct {
	Service  service.LedgerService
	Currency string
	Logger   *slog.Logger
}

func (h LedgerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/accounts/balances", h.balances)
	r.Get("/admin/accounts/transfers", h.listTransfers)
	r.Post("/admin/accounts/transfers", h.createTransfer)
	r.Get("/admin/accounts/expenses", h.listExpenses)
	r.Post("/admin/accounts/expenses", h.createExpense)
	r.Get("/admin/accounts/export", h.export)
}

func (h LedgerHandler) balances(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Balances(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":     h.Currency,
		"approvedFees": st.Totals.ApprovedFees,
		"transfers":    st.Totals.Transfers,
		"cashExpenses": st.Totals.CashExpenses,
		"bankExpenses": st.Totals.BankExpenses,
		"cashInHand":   st.Balances.CashInHand,
		"cashAtBank":   st.Balances.CashAtBank,
	})
}

func (h LedgerHandler) listTransfers(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListTransfers(r.Context(), currentActor(r), queryInt(r, "limit", 100))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, t := range items {
		resp = append(resp, transferView(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h LedgerHandler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   int64   `json:"amount"`
		FromDate string  `json:"fromDate"`
		ToDate   string  `json:"toDate"`
		Remarks  *string `json:"remarks"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	from, err := parseOptionalDate(req.FromDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fromDate")
		return
	}
	to, err := parseOptionalDate(req.ToDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid toDate")
		return
	}
	t, err := h.Service.RecordTransfer(r.Context(), currentActor(r), service.TransferInput{
		Amount:   req.Amount,
		FromDate: from,
		ToDate:   to,
		Remarks:  req.Remarks,
	})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, transferView(*t))
}

func (h LedgerHandler) listExpenses(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListExpenses(r.Context(), currentActor(r), queryInt(r, "limit", 100))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, e := range items {
		resp = append(resp, expenseView(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h LedgerHandler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount        int64  `json:"amount"`
		PaymentMethod string `json:"paymentMethod"`
		Description   string `json:"description"`
		ExpenseDate   string `json:"expenseDate"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := parseOptionalDate(req.ExpenseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expenseDate")
		return
	}
	e, err := h.Service.RecordExpense(r.Context(), currentActor(r), service.ExpenseInput{
		Amount:        req.Amount,
		PaymentMethod: domain.PaymentMethod(strings.ToLower(req.PaymentMethod)),
		Description:   req.Description,
		ExpenseDate:   date,
	})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseView(*e))
}

func (h LedgerHandler) export(w http.ResponseWriter, r *http.Request) {
	if format := r.URL.Query().Get("format"); format != "" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "invalid format (use xlsx)")
		return
	}
	snap, err := h.Service.Snapshot(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	data, err := export.LedgerXLSX(snap.Totals, snap.Transfers, snap.Expenses, h.Currency)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"accounts_%s.xlsx\"", time.Now().Format("20060102")))
	_, _ = w.Write(data)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func transferView(t domain.CashTransaction) map[string]any {
	return map[string]any{
		"id":        t.ID,
		"amount":    t.Amount,
		"fromDate":  formatDate(t.FromDate),
		"toDate":    formatDate(t.ToDate),
		"remarks":   t.Remarks,
		"createdAt": t.CreatedAt.Format(time.RFC3339),
	}
}

func expenseView(e domain.Expense) map[string]any {
	return map[string]any{
		"id":            e.ID,
		"amount":        e.Amount,
		"paymentMethod": string(e.PaymentMethod),
		"description":   e.Description,
		"expenseDate":   e.ExpenseDate.Format(dateLayout),
		"createdAt":     e.CreatedAt.Format(time.RFC3339),
	}
}
