package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/usecase"
)

func (rt *Router) wizardSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	user, _ := sessionUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, rt.wizard.Snapshot(user.ID))
}

func (rt *Router) wizardAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	user, _ := sessionUserFromContext(r.Context())
	action := strings.TrimPrefix(r.URL.Path, "/v1/wizard/")

	switch action {
	case "owner":
		rt.wizardOwner(w, r, user.ID)
	case "property":
		rt.wizardProperty(w, r, user.ID)
	case "back":
		step := rt.wizard.Back(user.ID)
		writeJSON(w, http.StatusOK, map[string]any{"step": step, "step_name": step.String()})
	case "images":
		rt.wizardUploadImage(w, r, user.ID)
	case "documents":
		rt.wizardUploadDocument(w, r, user.ID)
	case "submit":
		rt.wizardSubmit(w, r, *user)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown wizard action: " + action})
	}
}

func (rt *Router) wizardOwner(w http.ResponseWriter, r *http.Request, sellerID string) {
	var details usecase.OwnerDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	err := rt.wizard.SubmitOwnerDetails(sellerID, details)
	if rt.metrics != nil {
		rt.metrics.RecordWizardStep(serviceName, usecase.StepOwnerVerification.String(), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.wizard.Snapshot(sellerID))
}

func (rt *Router) wizardProperty(w http.ResponseWriter, r *http.Request, sellerID string) {
	var details usecase.PropertyDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	err := rt.wizard.SubmitPropertyDetails(sellerID, details)
	if rt.metrics != nil {
		rt.metrics.RecordWizardStep(serviceName, usecase.StepPropertyDetails.String(), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.wizard.Snapshot(sellerID))
}

func (rt *Router) wizardUploadImage(w http.ResponseWriter, r *http.Request, sellerID string) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	if err := rt.wizard.AttachImage(r.Context(), sellerID, fileHeader.Filename, file); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.wizard.Snapshot(sellerID))
}

func (rt *Router) wizardUploadDocument(w http.ResponseWriter, r *http.Request, sellerID string) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	docType := domain.DocumentType(r.FormValue("type"))
	if err := rt.wizard.AttachDocument(r.Context(), sellerID, docType, fileHeader.Filename, file); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.wizard.Snapshot(sellerID))
}

func (rt *Router) wizardSubmit(w http.ResponseWriter, r *http.Request, seller domain.User) {
	plot, err := rt.wizard.Submit(r.Context(), seller)
	if rt.metrics != nil {
		rt.metrics.RecordSubmission(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plot)
}
