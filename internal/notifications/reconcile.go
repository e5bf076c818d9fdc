// Package notifications merges the shared notification catalog into each
// show's private overlay and serves the resulting view.
package notifications

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/controlpanel/internal/models"
)

// RetentionPolicy is what happens to a show's overlay entry of one
// notification type.
type RetentionPolicy struct {
	// KeepDeletedWhileInCatalog keeps a user-deleted entry (still deleted)
	// as long as the catalog lists it, so it never comes back as new.
	KeepDeletedWhileInCatalog bool
	// KeepWhenOrphaned keeps a non-deleted entry after its catalog entry
	// is gone. Show-local notifications never had a catalog entry.
	KeepWhenOrphaned bool
	// PurgeWhenDeleted removes deleted entries from storage entirely.
	PurgeWhenDeleted bool
	// MaxAge expires entries older than this regardless of flags. Zero
	// means never.
	MaxAge time.Duration
}

var retentionPolicies = map[models.NotificationType]RetentionPolicy{
	models.NotificationTypeAdmin: {
		KeepDeletedWhileInCatalog: true,
	},
	models.NotificationTypeUser: {
		KeepWhenOrphaned: true,
		PurgeWhenDeleted: true,
	},
	models.NotificationTypeFppHealth: {
		KeepWhenOrphaned: true,
		PurgeWhenDeleted: true,
		MaxAge:           24 * time.Hour,
	},
}

// PolicyFor returns the retention policy of a type. Unknown types are
// treated like USER.
func PolicyFor(typ models.NotificationType) RetentionPolicy {
	if p, ok := retentionPolicies[typ]; ok {
		return p
	}
	return retentionPolicies[models.NotificationTypeUser]
}

// Result is the outcome of one reconciliation.
type Result struct {
	// Merged is the overlay the show should store.
	Merged []models.ShowNotification
	// Visible is the non-deleted part of Merged, newest first.
	Visible []models.ShowNotification
	// Purged lists catalog ids the show must not be offered again.
	Purged []uuid.UUID
}

// Reconcile merges catalog into a show's overlay.
//
// purged holds catalog ids purged by earlier runs; they are skipped
// instead of showing up as new. Entries without a notification are
// dropped. The inputs are not modified.
func Reconcile(catalog []models.Notification, overlay []models.ShowNotification, purged []uuid.UUID, now time.Time) Result {
	index := make(map[uuid.UUID]models.ShowNotification, len(overlay))
	order := make([]uuid.UUID, 0, len(overlay))
	for _, entry := range overlay {
		if entry.Notification == nil {
			continue
		}
		id := entry.Notification.UUID
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = entry
		order = append(order, id)
	}

	tombstones := make(map[uuid.UUID]struct{}, len(purged))
	for _, id := range purged {
		tombstones[id] = struct{}{}
	}

	merged := make([]models.ShowNotification, 0, len(catalog)+len(order))

	seen := make(map[uuid.UUID]struct{}, len(catalog))
	for _, n := range catalog {
		if _, dup := seen[n.UUID]; dup {
			continue
		}
		seen[n.UUID] = struct{}{}

		existing, ok := index[n.UUID]
		if !ok {
			if _, gone := tombstones[n.UUID]; gone {
				continue
			}
			merged = append(merged, models.ShowNotification{Notification: snapshot(n)})
			continue
		}
		delete(index, n.UUID)

		if existing.Deleted && !PolicyFor(n.Type).KeepDeletedWhileInCatalog {
			continue
		}
		merged = append(merged, models.ShowNotification{
			Notification: snapshot(n),
			Read:         existing.Read,
			Deleted:      existing.Deleted,
		})
	}

	// Whatever is left in the index has no catalog entry any more.
	for _, id := range order {
		entry, ok := index[id]
		if !ok {
			continue
		}
		if entry.Deleted || !PolicyFor(entry.Notification.Type).KeepWhenOrphaned {
			continue
		}
		merged = append(merged, models.ShowNotification{
			Notification: snapshot(*entry.Notification),
			Read:         entry.Read,
		})
	}

	merged = prune(merged, now)

	kept := make(map[uuid.UUID]struct{}, len(merged))
	visible := make([]models.ShowNotification, 0, len(merged))
	for _, entry := range merged {
		kept[entry.Notification.UUID] = struct{}{}
		if !entry.Deleted {
			visible = append(visible, entry)
		}
	}
	sortNewestFirst(visible)

	// A catalog entry that did not survive into merged was purged by this
	// show; remember it for as long as the catalog keeps listing it.
	var stillPurged []uuid.UUID
	for _, n := range catalog {
		if _, ok := kept[n.UUID]; !ok {
			stillPurged = append(stillPurged, n.UUID)
			kept[n.UUID] = struct{}{}
		}
	}

	return Result{Merged: merged, Visible: visible, Purged: stillPurged}
}

func prune(entries []models.ShowNotification, now time.Time) []models.ShowNotification {
	kept := entries[:0]
	for _, entry := range entries {
		policy := PolicyFor(entry.Notification.Type)
		if entry.Deleted && policy.PurgeWhenDeleted {
			continue
		}
		if expired(entry.Notification, policy, now) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

func expired(n *models.Notification, policy RetentionPolicy, now time.Time) bool {
	if policy.MaxAge <= 0 || n.CreatedDate == nil {
		return false
	}
	return n.CreatedDate.Before(now.Add(-policy.MaxAge))
}

// sortNewestFirst orders by CreatedDate descending. Entries without a
// date go last, in their existing order.
func sortNewestFirst(entries []models.ShowNotification) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Notification.CreatedDate, entries[j].Notification.CreatedDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

func snapshot(n models.Notification) *models.Notification {
	cp := n
	if n.CreatedDate != nil {
		created := *n.CreatedDate
		cp.CreatedDate = &created
	}
	return &cp
}
