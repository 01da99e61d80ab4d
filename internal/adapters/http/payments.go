package httpadapter

import (
	"net/http"
	"strings"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/usecase"
)

type paymentResponse struct {
	PlotID string                `json:"plot_id"`
	Status usecase.PaymentStatus `json:"status"`
	Fee    int64                 `json:"fee"`
}

// paymentAction routes /v1/payments/{plot_id}[/pay|/retry]. The bare plot
// path reads the current status.
func (rt *Router) paymentAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/payments/")
	plotID, action, _ := strings.Cut(rest, "/")
	if plotID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plot id is required"})
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		rt.writePaymentStatus(w, plotID, rt.payments.Status(plotID))
	case "pay":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if _, err := rt.reader.GetByID(r.Context(), plotID); err != nil {
			writeError(w, err)
			return
		}
		status := rt.payments.Pay(plotID)
		if rt.metrics != nil {
			rt.metrics.RecordPayment(serviceName, string(status))
		}
		rt.writePaymentStatus(w, plotID, status)
	case "retry":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		rt.writePaymentStatus(w, plotID, rt.payments.Retry(plotID))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown payment action: " + action})
	}
}

func (rt *Router) writePaymentStatus(w http.ResponseWriter, plotID string, status usecase.PaymentStatus) {
	writeJSON(w, http.StatusOK, paymentResponse{
		PlotID: plotID,
		Status: status,
		Fee:    domain.ListingFee,
	})
}
