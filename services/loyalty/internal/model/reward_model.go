package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RewardModel struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	BusinessID     string    `gorm:"type:uuid;not null;index" json:"business_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	PointsRequired int64     `gorm:"not null" json:"points_required"`
	Stock          *int64    `json:"stock,omitempty"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (RewardModel) TableName() string {
	return "rewards"
}

func (r *RewardModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
