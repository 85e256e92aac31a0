package domain

import "time"

// Event names pushed to subscribers.
const (
	EventTransactionCreated = "transaction:created"
	EventTransactionUpdated = "transaction:updated"
	EventUserUpdated        = "user:updated"
)

// ChannelKind separates per-user channels from the admin role group.
type ChannelKind string

const (
	UserChannel ChannelKind = "user"
	RoleChannel ChannelKind = "role"
)

// Channel addresses a set of subscribers.
type Channel struct {
	Kind ChannelKind `json:"kind"`
	Key  string      `json:"key"`
}

// UserChannelFor addresses a single user.
func UserChannelFor(userID string) Channel { return Channel{Kind: UserChannel, Key: userID} }

// AdminChannel addresses every admin.
func AdminChannel() Channel { return Channel{Kind: RoleChannel, Key: RoleAdmin} }

func (c Channel) String() string { return string(c.Kind) + ":" + c.Key }

// Event is a (channel, name, payload) triple. Delivery is best-effort.
type Event struct {
	Channel    Channel   `json:"channel"`
	Name       string    `json:"event"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BalancesPayload is the user:updated payload after a balance change.
type BalancesPayload struct {
	ID                   string `json:"id"`
	SavingsBalanceUSD    string `json:"savingsBalanceUSD"`
	CollateralBalanceUSD string `json:"collateralBalanceUSD"`
}

// MembershipPayload is the user:updated payload after a membership grant.
type MembershipPayload struct {
	ID                   string     `json:"id"`
	IsMember             bool       `json:"isMember"`
	MembershipPaidAmount string     `json:"membershipPaidAmount"`
	MembershipPaidAt     *time.Time `json:"membershipPaidAt,omitempty"`
	MembershipExpiresAt  *time.Time `json:"membershipExpiresAt,omitempty"`
	MembershipID         string     `json:"membershipId"`
}
