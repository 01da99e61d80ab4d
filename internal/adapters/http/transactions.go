package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/terravilla/marketplace/internal/core/domain"
)

func (rt *Router) expressInterest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		PlotID     string `json:"plot_id"`
		OfferPrice *int64 `json:"offer_price,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.PlotID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plot_id is required"})
		return
	}

	user, _ := sessionUserFromContext(r.Context())
	tx, err := rt.transactions.ExpressInterest(r.Context(), req.PlotID, user.ID, req.OfferPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.recordTransition(tx)
	writeJSON(w, http.StatusCreated, tx)
}

// transactionAction routes /v1/transactions/{id}[/negotiate|/escrow/...|/cancel].
func (rt *Router) transactionAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/transactions/")
	txID, action, _ := strings.Cut(rest, "/")
	if txID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transaction id is required"})
		return
	}

	if action == "" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		tx, err := rt.transactions.GetByID(r.Context(), txID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
		return
	}

	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var tx *domain.Transaction
	var err error
	switch action {
	case "negotiate":
		var req struct {
			OfferPrice int64 `json:"offer_price"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		tx, err = rt.transactions.Negotiate(r.Context(), txID, req.OfferPrice)
	case "escrow/open":
		var req struct {
			FinalPrice int64 `json:"final_price"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		tx, err = rt.transactions.OpenEscrow(r.Context(), txID, req.FinalPrice)
	case "escrow/fund":
		tx, err = rt.transactions.FundEscrow(r.Context(), txID)
	case "escrow/release":
		tx, err = rt.transactions.ReleaseEscrow(r.Context(), txID)
	case "cancel":
		tx, err = rt.transactions.Cancel(r.Context(), txID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown transaction action: " + action})
		return
	}

	if err != nil {
		writeError(w, err)
		return
	}
	rt.recordTransition(tx)
	writeJSON(w, http.StatusOK, tx)
}

func (rt *Router) recordTransition(tx *domain.Transaction) {
	if rt.metrics != nil && tx != nil {
		rt.metrics.RecordTransactionTransition(serviceName, string(tx.Status))
	}
}
