package entity

import "time"

// Session is one pending OTP verification attempt. It lives only in memory
// and is immutable once created; a new attempt always creates a new session.
type Session struct {
	Token       string
	AccountID   string
	Phone       string
	DisplayName string
	Password    string
	Region      string
	Subregion   string
	ProviderID  string
	CreatedAt   time.Time
}

// Account is the durable record created after a successful verification.
type Account struct {
	ID          string
	ProviderID  string
	Username    string
	AccountID   string
	Phone       string
	DisplayName string
	Region      string
	Subregion   string
	Verified    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DirectoryEntry maps a national identity number to the contact details
// registered for it. The directory collection is populated out of band.
type DirectoryEntry struct {
	AccountID   string
	Phone       string
	DisplayName string
}
