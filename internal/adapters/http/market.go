package httpadapter

import (
	"net/http"
	"time"
)

func (rt *Router) marketComparisons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	comparisons, err := rt.market.Comparisons(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comparisons": comparisons})
}

func (rt *Router) marketRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	recent, err := rt.market.RecentListings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recent": recent})
}

// marketReport streams the insights workbook as an XLSX attachment.
func (rt *Router) marketReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	filename := "market-report-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := rt.market.Report(r.Context(), w); err != nil {
		rt.logger.Error("market_report_failed", "error", err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordReportDownload(serviceName)
	}
}
