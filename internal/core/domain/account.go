package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccountType is the closed set of ledger account kinds.
type AccountType string

const (
	AccountClient                       AccountType = "CLIENT"
	AccountMerchant                     AccountType = "MERCHANT"
	AccountAgentWallet                  AccountType = "AGENT_WALLET"
	AccountAgentCashClearing            AccountType = "AGENT_CASH_CLEARING"
	AccountPlatform                     AccountType = "PLATFORM"
	AccountPlatformClearing             AccountType = "PLATFORM_CLEARING"
	AccountPlatformFeeRevenue           AccountType = "PLATFORM_FEE_REVENUE"
	AccountPlatformBank                 AccountType = "PLATFORM_BANK"
	AccountPlatformClientRefundClearing AccountType = "PLATFORM_CLIENT_REFUND_CLEARING"
)

// PlatformAccountTypes are the singleton accounts that have no owner.
var PlatformAccountTypes = []AccountType{
	AccountPlatform,
	AccountPlatformClearing,
	AccountPlatformFeeRevenue,
	AccountPlatformBank,
	AccountPlatformClientRefundClearing,
}

// IsPlatform reports whether t is an owner-less singleton account.
func (t AccountType) IsPlatform() bool {
	for _, p := range PlatformAccountTypes {
		if p == t {
			return true
		}
	}
	return false
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountClient, AccountMerchant, AccountAgentWallet, AccountAgentCashClearing:
		return true
	}
	return t.IsPlatform()
}

// AccountRef identifies a logical ledger account. OwnerRef is empty for platform singletons.
type AccountRef struct {
	Type     AccountType `json:"accountType"`
	OwnerRef string      `json:"ownerRef,omitempty"`
}

// Key is a stable string form used for lock ordering and map keys.
func (r AccountRef) Key() string {
	return string(r.Type) + ":" + r.OwnerRef
}

func (r AccountRef) String() string {
	if r.OwnerRef == "" {
		return string(r.Type)
	}
	return r.Key()
}

// Validate checks the owner reference agrees with the account type.
func (r AccountRef) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("unknown account type %q", r.Type)
	}
	if r.Type.IsPlatform() && r.OwnerRef != "" {
		return fmt.Errorf("platform account %s takes no owner", r.Type)
	}
	if !r.Type.IsPlatform() && strings.TrimSpace(r.OwnerRef) == "" {
		return fmt.Errorf("account %s requires an owner", r.Type)
	}
	return nil
}

func PlatformAccount(t AccountType) AccountRef { return AccountRef{Type: t} }

func ClientAccount(clientID string) AccountRef {
	return AccountRef{Type: AccountClient, OwnerRef: clientID}
}

func MerchantAccount(merchantID string) AccountRef {
	return AccountRef{Type: AccountMerchant, OwnerRef: merchantID}
}

func AgentWalletAccount(agentID string) AccountRef {
	return AccountRef{Type: AccountAgentWallet, OwnerRef: agentID}
}

func AgentCashAccount(agentID string) AccountRef {
	return AccountRef{Type: AccountAgentCashClearing, OwnerRef: agentID}
}

// AccountStatus is the administrative status of a ledger account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
	AccountClosed    AccountStatus = "CLOSED"
)

// AccountProfile gates whether postings to an account are allowed.
type AccountProfile struct {
	Ref           AccountRef    `json:"account"`
	Status        AccountStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastUpdatedAt time.Time     `json:"lastUpdatedAt"`
	LastUpdatedBy string        `json:"lastUpdatedBy"`
}

func (p AccountProfile) IsActive() bool { return p.Status == AccountActive }

// CanTransitionTo validates an administrative status change. Balance is checked by the caller.
func (p AccountProfile) CanTransitionTo(next AccountStatus) error {
	switch next {
	case AccountActive, AccountSuspended, AccountClosed:
	default:
		return fmt.Errorf("unknown account status %q", next)
	}
	if p.Status == AccountClosed {
		return fmt.Errorf("account %s is closed", p.Ref)
	}
	if p.Status == next {
		return fmt.Errorf("account %s is already %s", p.Ref, next)
	}
	return nil
}

// NewAccountProfile returns an ACTIVE profile.
func NewAccountProfile(ref AccountRef, now time.Time, createdBy string) AccountProfile {
	return AccountProfile{
		Ref:           ref,
		Status:        AccountActive,
		CreatedAt:     now,
		LastUpdatedAt: now,
		LastUpdatedBy: createdBy,
	}
}
