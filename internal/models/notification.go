package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType is the closed set of notification kinds. Each kind has
// its own retention policy; see notifications.retentionPolicies.
type NotificationType string

const (
	// NotificationTypeAdmin is authored by an admin in the shared catalog.
	NotificationTypeAdmin NotificationType = "ADMIN"
	// NotificationTypeUser is addressed to users and may be purged once deleted.
	NotificationTypeUser NotificationType = "USER"
	// NotificationTypeFppHealth is system generated and expires after 24h.
	NotificationTypeFppHealth NotificationType = "FPP_HEALTH"
)

// Notification is a catalog entry. It lives outside any show and is
// read-only from a show's point of view.
type Notification struct {
	UUID        uuid.UUID        `json:"uuid"`
	Type        NotificationType `json:"type"`
	CreatedDate *time.Time       `json:"created_date,omitempty"`
	Subject     string           `json:"subject"`
	Preview     string           `json:"preview"`
	Message     string           `json:"message"`
}

// ShowNotification is a show's private overlay on a Notification.
//
// Notification is a snapshot copied from the catalog, refreshed on every
// reconciliation. A nil Notification marks a garbled entry that
// reconciliation drops.
type ShowNotification struct {
	Notification *Notification `json:"notification"`
	Read         bool          `json:"read"`
	Deleted      bool          `json:"deleted"`
}
