package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending  OrderStatus = "Pending"
	OrderApproved OrderStatus = "Approved"
	OrderRejected OrderStatus = "Rejected"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderApproved, OrderRejected:
		return true
	default:
		return false
	}
}

// Order is a supplier's bid on a tender. EstimatedDeliveryDays is nil when the
// supplier did not promise a delivery time.
type Order struct {
	Id                     string          `json:"id,omitempty"`
	TenderId               string          `json:"tenderId,omitempty"`
	Supplier               string          `json:"supplier,omitempty"`
	TotalAmount            decimal.Decimal `json:"totalAmount"`
	EstimatedDeliveryDays  *int            `json:"estimatedDeliveryDays,omitempty"`
	StandardWarranty       int             `json:"standardWarranty"`
	ExtendedWarranty       bool            `json:"extendedWarranty"`
	ExtendedWarrantyPeriod int             `json:"extendedWarrantyPeriod"`
	QualityCertification   bool            `json:"qualityCertification"`
	InstallationService    bool            `json:"installationService"`
	MaintenanceContract    bool            `json:"maintenanceContract"`
	FreeDelivery           bool            `json:"freeDelivery"`
	Status                 OrderStatus     `json:"status,omitempty"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"-"`
}

type ScoredOrder struct {
	Order
	Rank          int     `json:"rank"`
	Score         float64 `json:"score"`
	PriceScore    float64 `json:"priceScore"`
	DeliveryScore float64 `json:"deliveryScore"`
	WarrantyScore float64 `json:"warrantyScore"`
	ServiceScore  float64 `json:"serviceScore"`
}

// Ranking is the result of evaluating a set of orders. Best is nil when
// there was nothing to evaluate.
type Ranking struct {
	Best   *ScoredOrder  `json:"best"`
	Orders []ScoredOrder `json:"orders"`
}
