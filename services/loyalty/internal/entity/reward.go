package entity

import "time"

// Reward is a catalog entry owned by merchant configuration. Stock is nil for
// unlimited rewards; finite stock is decremented atomically on redemption and
// restored when the redemption is revoked.
type Reward struct {
	ID             string    `json:"id"`
	BusinessID     string    `json:"business_id"`
	Name           string    `json:"name"`
	PointsRequired int64     `json:"points_required"`
	Stock          *int64    `json:"stock,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
