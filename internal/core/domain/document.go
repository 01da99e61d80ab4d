package domain

import "time"

type DocumentType string

const (
	DocTitleDeed              DocumentType = "title_deed"
	DocSurveyMap              DocumentType = "survey_map"
	DocTaxReceipt             DocumentType = "tax_receipt"
	DocNOC                    DocumentType = "noc"
	DocEncumbranceCertificate DocumentType = "encumbrance_certificate"
	DocOther                  DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocTitleDeed, DocSurveyMap, DocTaxReceipt, DocNOC, DocEncumbranceCertificate, DocOther:
		return true
	}
	return false
}

type AICheckStatus string

const (
	AICheckPending AICheckStatus = "pending"
	AICheckPassed  AICheckStatus = "passed"
	AICheckFailed  AICheckStatus = "failed"
)

type GovtCheckStatus string

const (
	GovtCheckPending  GovtCheckStatus = "pending"
	GovtCheckVerified GovtCheckStatus = "verified"
	GovtCheckFailed   GovtCheckStatus = "failed"
)

type Document struct {
	ID                 string             `json:"id"`
	PlotID             string             `json:"plot_id"`
	DocumentType       DocumentType       `json:"document_type"`
	StorageKey         string             `json:"storage_key"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	AICheckStatus      AICheckStatus      `json:"ai_check_status"`
	GovtCheckStatus    GovtCheckStatus    `json:"govt_check_status"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	RejectionReason    string             `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}
