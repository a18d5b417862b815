package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/service"
)

type ReportHandler struct {
	Service service.ReportService
	Logger  *slog.Logger
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/reports/panchayath-grades", h.grades)
	r.Get("/admin/reports/summary", h.summary)
}

func (h ReportHandler) grades(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.PanchayathGrades(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	rows := make([]map[string]any, 0, len(report.Localities))
	for i, g := range report.Localities {
		rows = append(rows, map[string]any{
			"rank":          i + 1,
			"panchayathId":  g.PanchayathID,
			"name":          g.Name,
			"district":      g.District,
			"registrations": g.Registrations,
			"approved":      g.Approved,
			"revenue":       g.Revenue,
			"grade":         string(g.Grade),
		})
	}
	dist := make(map[string]int, len(report.Distribution))
	for grade, n := range report.Distribution {
		dist[string(grade)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"panchayaths":  rows,
		"distribution": dist,
	})
}

func (h ReportHandler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Service.Summary(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	counts := make(map[string]int64, len(sum.StatusCounts))
	for status, n := range sum.StatusCounts {
		counts[string(status)] = n
	}
	resp := map[string]any{
		"total":        sum.Total,
		"byStatus":     counts,
		"expiringSoon": sum.ExpiringSoon,
	}
	if sum.Revenue != nil {
		resp["revenue"] = *sum.Revenue
	}
	if sum.Balances != nil {
		resp["balances"] = map[string]int64{
			"cashInHand": sum.Balances.CashInHand,
			"cashAtBank": sum.Balances.CashAtBank,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
