package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/ports"
)

// WizardStep identifies a stage of the linear listing flow. Steps advance
// only through the guarded transitions; back-navigation needs no
// re-validation of the target step.
type WizardStep int

const (
	StepOwnerVerification WizardStep = iota + 1
	StepPropertyDetails
	StepMediaAndDocuments
)

func (s WizardStep) String() string {
	switch s {
	case StepOwnerVerification:
		return "owner_verification"
	case StepPropertyDetails:
		return "property_details"
	case StepMediaAndDocuments:
		return "media_and_documents"
	default:
		return "unknown"
	}
}

type OwnerDetails struct {
	OwnerName         string `json:"owner_name"`
	NationalID        string `json:"national_id"`
	PropertyOwnerName string `json:"property_owner_name"`
}

type PropertyDetails struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	AreaSqft    float64 `json:"area_sqft"`
	Price       int64   `json:"price"`
}

// PricePerSqft previews the derived rate shown to the seller while typing.
// The persisted value is recomputed by the domain constructor on submit.
func (d PropertyDetails) PricePerSqft() int64 {
	return domain.DerivePricePerSqft(d.Price, d.AreaSqft)
}

type stagedDocument struct {
	Type       domain.DocumentType
	StorageKey string
}

type wizardState struct {
	step      WizardStep
	owner     OwnerDetails
	property  PropertyDetails
	images    []string
	documents []stagedDocument
}

func newWizardState() *wizardState {
	return &wizardState{step: StepOwnerVerification}
}

// WizardSnapshot is the externally visible wizard state.
type WizardSnapshot struct {
	Step          WizardStep      `json:"step"`
	StepName      string          `json:"step_name"`
	Owner         OwnerDetails    `json:"owner"`
	Property      PropertyDetails `json:"property"`
	ImageCount    int             `json:"image_count"`
	DocumentCount int             `json:"document_count"`
}

// ListingWizardUseCase runs one listing flow per seller. All state is local
// until submission, which appends the finished listing to the catalog and
// resets the flow to its initial step.
type ListingWizardUseCase struct {
	repo    ports.PlotRepository
	storage ports.ObjectStorage
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*wizardState
}

func NewListingWizardUseCase(repo ports.PlotRepository, storage ports.ObjectStorage) *ListingWizardUseCase {
	return &ListingWizardUseCase{
		repo:     repo,
		storage:  storage,
		now:      time.Now,
		sessions: make(map[string]*wizardState),
	}
}

func (uc *ListingWizardUseCase) Snapshot(sellerID string) WizardSnapshot {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	state := uc.state(sellerID)
	return WizardSnapshot{
		Step:          state.step,
		StepName:      state.step.String(),
		Owner:         state.owner,
		Property:      state.property,
		ImageCount:    len(state.images),
		DocumentCount: len(state.documents),
	}
}

// SubmitOwnerDetails is the 1→2 transition guard. Checks run in order:
// presence of all three fields, national-id digit count, then the
// owner-name equality check that stands in for identity verification.
func (uc *ListingWizardUseCase) SubmitOwnerDetails(sellerID string, details OwnerDetails) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state := uc.state(sellerID)
	if state.step != StepOwnerVerification {
		return wrongStepError(state.step, StepOwnerVerification)
	}

	// Non-digits are stripped before any check, so the length guard sees
	// digits only.
	details.NationalID = digitsOnly(details.NationalID)

	if details.OwnerName == "" || details.NationalID == "" || details.PropertyOwnerName == "" {
		return domain.NewValidationError("owner_details",
			"owner name, national id number and property owner name are all required")
	}
	if len(details.NationalID) != 12 {
		return domain.NewValidationError("national_id",
			"national id number must be exactly 12 digits")
	}
	if !ownerNamesMatch(details.OwnerName, details.PropertyOwnerName) {
		return domain.NewValidationError("property_owner_name",
			"owner name does not match the property owner of record")
	}

	state.owner = details
	state.step = StepPropertyDetails
	return nil
}

// SubmitPropertyDetails is the 2→3 transition. Only field presence and
// numeric positivity are enforced here.
func (uc *ListingWizardUseCase) SubmitPropertyDetails(sellerID string, details PropertyDetails) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state := uc.state(sellerID)
	if state.step != StepPropertyDetails {
		return wrongStepError(state.step, StepPropertyDetails)
	}

	for field, value := range map[string]string{
		"title":   details.Title,
		"address": details.Address,
		"city":    details.City,
		"state":   details.State,
	} {
		if strings.TrimSpace(value) == "" {
			return domain.NewValidationError(field, field+" is required")
		}
	}
	if details.AreaSqft <= 0 {
		return domain.NewValidationError("area_sqft", "area must be a positive number of square feet")
	}
	if details.Price <= 0 {
		return domain.NewValidationError("price", "price must be a positive amount")
	}

	state.property = details
	state.step = StepMediaAndDocuments
	return nil
}

// Back moves one step towards the start without re-validating the target.
func (uc *ListingWizardUseCase) Back(sellerID string) WizardStep {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state := uc.state(sellerID)
	if state.step > StepOwnerVerification {
		state.step--
	}
	return state.step
}

func (uc *ListingWizardUseCase) AttachImage(ctx context.Context, sellerID, filename string, data io.Reader) error {
	key := fmt.Sprintf("plots/staging/%s/images/%s_%s", sellerID, uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, key, data); err != nil {
		return fmt.Errorf("store image: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	state := uc.state(sellerID)
	if state.step != StepMediaAndDocuments {
		return wrongStepError(state.step, StepMediaAndDocuments)
	}
	state.images = append(state.images, key)
	return nil
}

func (uc *ListingWizardUseCase) AttachDocument(ctx context.Context, sellerID string, docType domain.DocumentType, filename string, data io.Reader) error {
	if !docType.Valid() {
		return domain.NewValidationError("document_type", "unknown document type: "+string(docType))
	}
	key := fmt.Sprintf("plots/staging/%s/documents/%s_%s", sellerID, uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, key, data); err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	state := uc.state(sellerID)
	if state.step != StepMediaAndDocuments {
		return wrongStepError(state.step, StepMediaAndDocuments)
	}
	state.documents = append(state.documents, stagedDocument{Type: docType, StorageKey: key})
	return nil
}

// Submit is the terminal guard of step 3: at least one image and at least one
// document, each reported independently. On success the finished listing is
// appended to the catalog as a draft and the wizard resets to step 1.
func (uc *ListingWizardUseCase) Submit(ctx context.Context, seller domain.User) (*domain.Plot, error) {
	uc.mu.Lock()
	state := uc.state(seller.ID)
	if state.step != StepMediaAndDocuments {
		uc.mu.Unlock()
		return nil, wrongStepError(state.step, StepMediaAndDocuments)
	}
	if len(state.images) == 0 {
		uc.mu.Unlock()
		return nil, domain.NewValidationError("images", "at least one property image is required")
	}
	if len(state.documents) == 0 {
		uc.mu.Unlock()
		return nil, domain.NewValidationError("documents", "at least one property document is required")
	}

	now := uc.now().UTC()
	plot := domain.NewPlot(
		uuid.NewString(),
		seller.ID,
		state.property.Title,
		state.property.Address,
		state.property.City,
		state.property.State,
		state.property.AreaSqft,
		state.property.Price,
		now,
	)
	plot.SellerName = seller.FullName
	plot.SellerPhone = seller.Phone
	plot.Description = state.property.Description
	plot.OwnerName = strings.TrimSpace(state.owner.OwnerName)
	plot.OwnerNationalID = state.owner.NationalID
	plot.PropertyOwnerName = strings.TrimSpace(state.owner.PropertyOwnerName)
	plot.OwnerVerified = true
	plot.Images = append(plot.Images, state.images...)
	for _, staged := range state.documents {
		plot.Documents = append(plot.Documents, domain.Document{
			ID:                 uuid.NewString(),
			PlotID:             plot.ID,
			DocumentType:       staged.Type,
			StorageKey:         staged.StorageKey,
			VerificationStatus: domain.VerificationPending,
			AICheckStatus:      domain.AICheckPending,
			GovtCheckStatus:    domain.GovtCheckPending,
			CreatedAt:          now,
		})
	}

	uc.mu.Unlock()

	// The staged state is only discarded once the listing is safely in the
	// catalog; a failed append leaves the wizard ready for another submit.
	if err := uc.repo.Create(ctx, &plot); err != nil {
		return nil, fmt.Errorf("append listing to catalog: %w", err)
	}

	uc.mu.Lock()
	delete(uc.sessions, seller.ID)
	uc.mu.Unlock()
	return &plot, nil
}

func (uc *ListingWizardUseCase) state(sellerID string) *wizardState {
	state, ok := uc.sessions[sellerID]
	if !ok {
		state = newWizardState()
		uc.sessions[sellerID] = state
	}
	return state
}

func wrongStepError(current, expected WizardStep) error {
	return domain.WrapError(domain.ErrConflict, "listing wizard",
		fmt.Errorf("step is %s, expected %s", current, expected))
}

// ownerNamesMatch compares trimmed names case-insensitively. Internal
// whitespace is deliberately not collapsed: "Asha Rao" and "asha   rao" do
// not match.
func ownerNamesMatch(ownerName, propertyOwnerName string) bool {
	return strings.EqualFold(strings.TrimSpace(ownerName), strings.TrimSpace(propertyOwnerName))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "upload.bin"
	}
	return base
}
