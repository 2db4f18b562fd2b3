package sync

import "time"

type ArchiveEvent struct {
	Type   string    `json:"type"` // "item.update" or "item.delete"
	ItemID string    `json:"item_id"`
	Title  string    `json:"title,omitempty"`
	Status string    `json:"status,omitempty"`
	At     time.Time `json:"at"`
}
