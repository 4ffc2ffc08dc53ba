// Package event holds the wire contracts for messages exchanged between
// modules and downstream services.
package event

// AccountVerifiedDestination is the topic/subject for account verification events.
const AccountVerifiedDestination = "idgate.account.verified"

// AccountVerifiedMessage is published after an identity has been confirmed
// and its account record persisted.
type AccountVerifiedMessage struct {
	AccountID   string `json:"account_id"`
	ProviderID  string `json:"provider_id"`
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
	Region      string `json:"region"`
	Subregion   string `json:"subregion"`
	VerifiedAt  int64  `json:"verified_at"`
}
