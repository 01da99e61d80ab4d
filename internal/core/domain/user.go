package domain

import "time"

type UserType string

const (
	UserTypeBuyer  UserType = "buyer"
	UserTypeSeller UserType = "seller"
	UserTypeBoth   UserType = "both"
)

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

type User struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	KYCStatus      KYCStatus `json:"kyc_status"`
	KYCDocumentURL string    `json:"kyc_document_url,omitempty"`
	UserType       UserType  `json:"user_type"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// untouched by the merge.
type ProfileUpdate struct {
	FullName *string   `json:"full_name,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
	UserType *UserType `json:"user_type,omitempty"`
}

func (u *User) ApplyProfileUpdate(update ProfileUpdate) {
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.UserType != nil {
		u.UserType = *update.UserType
	}
}
