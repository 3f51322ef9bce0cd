package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// Client is a card holder. Its wallet is the CLIENT account.
type Client struct {
	ClientID    string `json:"clientID"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	EnrolledBy  string `json:"enrolledBy"`
	AuditFields
}

// Agent collects cash in the field. It owns an AGENT_WALLET and an AGENT_CASH_CLEARING account.
type Agent struct {
	AgentID     string `json:"agentID"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	AuditFields
}

// Merchant accepts card payments into its MERCHANT account.
type Merchant struct {
	MerchantID  string `json:"merchantID"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	AuditFields
}
