package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DemandStage string

const (
	StagePendingLogistics   DemandStage = "Pending Logistics Officer"
	StagePendingBursar      DemandStage = "Pending Bursar"
	StagePendingRector      DemandStage = "Pending Rector"
	StagePendingProcurement DemandStage = "Pending Procurement Officer"
	StageApproved           DemandStage = "Approved"
	StageTenderPublished    DemandStage = "Tender Published"
	StageRejected           DemandStage = "Rejected"
)

func ValidDemandStage(s DemandStage) bool {
	switch s {
	case StagePendingLogistics, StagePendingBursar, StagePendingRector, StagePendingProcurement,
		StageApproved, StageTenderPublished, StageRejected:
		return true
	default:
		return false
	}
}

// Rejection records who stopped a demand and why.
type Rejection struct {
	Role     Role      `json:"role"`
	Username string    `json:"username"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

type Demand struct {
	Id            string          `json:"id"`
	Department    string          `json:"department"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	EstimatedCost decimal.Decimal `json:"estimatedCost"`
	CreatedBy     string          `json:"createdBy"`
	Stage         DemandStage     `json:"stage"`
	Rejection     *Rejection      `json:"rejection,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
