package models

import "querychat/internal/summary"

// Channel describes one conversation thread registered at startup.
type Channel struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Domain      summary.Domain `json:"domain"`
}
