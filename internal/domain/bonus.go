package domain

import (
	"time"

	"github.com/google/uuid"
)

// OfferKind classifies a bonus offer.
type OfferKind string

const (
	OfferFirstDeposit OfferKind = "first_deposit"
	OfferDeposit      OfferKind = "deposit"
	OfferVipLevel     OfferKind = "vip_level"
	OfferCustom       OfferKind = "custom"
)

// ValidOfferKind reports whether k is one of the known offer kinds.
func ValidOfferKind(k OfferKind) bool {
	switch k {
	case OfferFirstDeposit, OfferDeposit, OfferVipLevel, OfferCustom:
		return true
	}
	return false
}

// GrantStatus tracks the lifecycle of a granted bonus.
type GrantStatus string

const (
	GrantStatusPending   GrantStatus = "pending"
	GrantStatusActive    GrantStatus = "active"
	GrantStatusCompleted GrantStatus = "completed"
	GrantStatusCancelled GrantStatus = "cancelled"
)

// BonusOffer is a catalog entry describing a bonus. Monetary fields are
// integer centavos; Percentage and RolloverMultiplier are rates.
type BonusOffer struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Kind               OfferKind `json:"kind"`
	Percentage         float64   `json:"percentage"`
	Fixed              int64     `json:"fixed"`
	MinDeposit         int64     `json:"min_deposit"`
	MaxBonus           *int64    `json:"max_bonus,omitempty"`
	RolloverMultiplier float64   `json:"rollover_multiplier"`
	RtpPercentage      float64   `json:"rtp_percentage"`
	Active             bool      `json:"active"`
	VipLevelRequired   *int      `json:"vip_level_required,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// BonusOfferPatch carries partial-update fields for an offer. Nil (or unset
// Optional) means leave the column untouched; the nullable columns use
// Optional so an explicit JSON null clears them.
type BonusOfferPatch struct {
	Name               *string         `json:"name,omitempty"`
	Kind               *OfferKind      `json:"kind,omitempty"`
	Percentage         *float64        `json:"percentage,omitempty"`
	Fixed              *int64          `json:"fixed,omitempty"`
	MinDeposit         *int64          `json:"min_deposit,omitempty"`
	MaxBonus           Optional[int64] `json:"max_bonus,omitempty"`
	RolloverMultiplier *float64        `json:"rollover_multiplier,omitempty"`
	RtpPercentage      *float64        `json:"rtp_percentage,omitempty"`
	Active             *bool           `json:"active,omitempty"`
	VipLevelRequired   Optional[int]   `json:"vip_level_required,omitempty"`
}

// NewBonusOffer builds a catalog entry from a create request, applying the
// creation defaults: multiplier 1.0, RTP 96%, active.
func NewBonusOffer(p BonusOfferPatch) *BonusOffer {
	o := &BonusOffer{
		RolloverMultiplier: 1,
		RtpPercentage:      96,
		Active:             true,
	}
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Kind != nil {
		o.Kind = *p.Kind
	}
	if p.Percentage != nil {
		o.Percentage = *p.Percentage
	}
	if p.Fixed != nil {
		o.Fixed = *p.Fixed
	}
	if p.MinDeposit != nil {
		o.MinDeposit = *p.MinDeposit
	}
	o.MaxBonus = p.MaxBonus.Ptr()
	if p.RolloverMultiplier != nil {
		o.RolloverMultiplier = *p.RolloverMultiplier
	}
	if p.RtpPercentage != nil {
		o.RtpPercentage = *p.RtpPercentage
	}
	if p.Active != nil {
		o.Active = *p.Active
	}
	o.VipLevelRequired = p.VipLevelRequired.Ptr()
	return o
}

// BonusGrant is an append-only user_bonuses ledger row created when an
// offer is applied to a settled deposit.
type BonusGrant struct {
	ID                uuid.UUID   `json:"id"`
	UserID            uuid.UUID   `json:"user_id"`
	OfferID           uuid.UUID   `json:"offer_id"`
	TransactionID     *uuid.UUID  `json:"transaction_id,omitempty"`
	BonusAmount       int64       `json:"bonus_amount"`
	DepositAmount     int64       `json:"deposit_amount"`
	RolloverRequired  int64       `json:"rollover_required"`
	RolloverCompleted int64       `json:"rollover_completed"`
	Status            GrantStatus `json:"status"`
	RtpPercentage     float64     `json:"rtp_percentage"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// IsRolloverComplete reports whether the wagering requirement has been met.
// The withdrawal gate checks this numeric condition, not the status column.
func (g *BonusGrant) IsRolloverComplete() bool {
	return g.RolloverCompleted >= g.RolloverRequired
}

// Outstanding returns the remaining rollover volume, never negative.
func (g *BonusGrant) Outstanding() int64 {
	if g.RolloverCompleted >= g.RolloverRequired {
		return 0
	}
	return g.RolloverRequired - g.RolloverCompleted
}

// WagerRecord is a user_bets row written per bet settlement while the user
// holds an active grant. NetAmount = BetAmount - WinAmount and may be
// negative when the player wins more than wagered.
type WagerRecord struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	GrantID   uuid.UUID  `json:"grant_id"`
	GameID    *uuid.UUID `json:"game_id,omitempty"`
	BetAmount int64      `json:"bet_amount"`
	WinAmount int64      `json:"win_amount"`
	NetAmount int64      `json:"net_amount"`
	CreatedAt time.Time  `json:"created_at"`
}

// WithdrawalCheck is the withdrawal gate verdict. Denial is a business
// result, not an error.
type WithdrawalCheck struct {
	Can    bool   `json:"can"`
	Reason string `json:"reason,omitempty"`
}
