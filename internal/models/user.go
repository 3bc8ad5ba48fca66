package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's authorization level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered ledger owner
type User struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	Username       string         `db:"username" json:"username"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	Role           Role           `db:"role" json:"role"`
	Stats          *StatsSnapshot `db:"stats" json:"stats,omitempty"`
	StatsUpdatedAt *time.Time     `db:"stats_updated_at" json:"statsUpdatedAt,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// StatsSnapshot is the persisted copy of a user's profile statistics,
// refreshed periodically for listings that should not recompute on read.
type StatsSnapshot struct {
	TotalBets       int      `json:"totalBets"`
	WinRatePct      float64  `json:"winRatePct"`
	RoiPct          float64  `json:"roiPct"`
	NetProfit       float64  `json:"netProfit"`
	TotalStaked     float64  `json:"totalStaked"`
	TotalReturn     float64  `json:"totalReturn"`
	MostProfitable  string   `json:"mostProfitable"`
	AvgStake        float64  `json:"avgStake"`
	WinStreak       int      `json:"winStreak"`
	ClvPct          *float64 `json:"clvPct"`
	PendingExposure float64  `json:"pendingExposure"`
}
