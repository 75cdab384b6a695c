package domain

// Tracking event names sent to marketing webhooks.
const (
	EventUserRegistered    = "user_registered"
	EventUserLogin         = "user_login"
	EventDepositCreated    = "deposit_created"
	EventDepositPaid       = "deposit_paid"
	EventDepositFailed     = "deposit_failed"
	EventWithdrawalCreated = "withdrawal_created"
	EventWithdrawalPaid    = "withdrawal_paid"
	EventGameLaunched      = "game_launched"
)

// TrackingEvent is the payload posted to configured webhooks.
type TrackingEvent struct {
	Event    string                 `json:"event"`
	UserID   string                 `json:"user_id,omitempty"`
	Username string                 `json:"username,omitempty"`
	Phone    string                 `json:"phone,omitempty"`
	Value    int64                  `json:"value,omitempty"`
	Currency string                 `json:"currency,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// WebhookConfig is the typed form of the webhook.<id>.* settings rows.
// Events lists the event names to deliver; "*" matches everything.
type WebhookConfig struct {
	ID      string   `json:"id"`
	URL     string   `json:"url"`
	Enabled bool     `json:"enabled"`
	Events  []string `json:"events"`
}

// WantsEvent reports whether the webhook subscribes to the given event.
func (w *WebhookConfig) WantsEvent(event string) bool {
	for _, e := range w.Events {
		if e == event || e == "*" {
			return true
		}
	}
	return false
}
