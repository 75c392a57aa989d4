// Package evaluator scores supplier orders and picks the best offer of a tender.
//
// Every sub-score is a linear function of a single order term. Sub-scores are
// not clamped: a bid above PriceCap or slower than DeliveryHorizonDays scores
// below zero on that dimension.
package evaluator

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"procurement/internal/models"
)

const (
	PriceWeight = 40.0
	PriceCap    = 10000.0

	DeliveryWeight      = 20.0
	DeliveryHorizonDays = 30.0
	DefaultDeliveryDays = 14

	WarrantyWeight        = 15.0
	WarrantyHorizonMonths = 24.0

	ExtendedWarrantyWeight        = 5.0
	ExtendedWarrantyHorizonMonths = 12.0

	ServiceBonus = 5.0
)

// ErrNotFinite reports an order whose amount has no finite float64 value.
var ErrNotFinite = errors.New("order amount is out of the representable range")

// Validate reports whether every order can be scored to a finite value.
// Negative or out-of-range terms are fine, only amounts that overflow
// float64 are not.
func Validate(orders []models.Order) error {
	for i, order := range orders {
		if math.IsInf(order.TotalAmount.InexactFloat64(), 0) {
			return fmt.Errorf("evaluator.Validate: order %d: %w: %s", i, ErrNotFinite, order.TotalAmount)
		}
	}
	return nil
}

// Score computes the weighted desirability of a single order. The result
// does not share memory with order.
func Score(order models.Order) models.ScoredOrder {
	if order.EstimatedDeliveryDays != nil {
		days := *order.EstimatedDeliveryDays
		order.EstimatedDeliveryDays = &days
	}

	scored := models.ScoredOrder{
		Order:         order,
		PriceScore:    priceScore(order),
		DeliveryScore: deliveryScore(order),
		WarrantyScore: warrantyScore(order),
		ServiceScore:  serviceScore(order),
	}
	scored.Score = scored.PriceScore + scored.DeliveryScore + scored.WarrantyScore + scored.ServiceScore
	return scored
}

// Rank scores every order and sorts them by descending score. Orders with
// equal scores keep their input order, so the earliest one wins a tie.
// The input slice is left untouched.
func Rank(orders []models.Order) models.Ranking {
	ranked := make([]models.ScoredOrder, 0, len(orders))
	for _, order := range orders {
		ranked = append(ranked, Score(order))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	result := models.Ranking{Orders: ranked}
	if len(ranked) > 0 {
		best := ranked[0]
		if best.EstimatedDeliveryDays != nil {
			days := *best.EstimatedDeliveryDays
			best.EstimatedDeliveryDays = &days
		}
		result.Best = &best
	}
	return result
}

func priceScore(order models.Order) float64 {
	return (1 - order.TotalAmount.InexactFloat64()/PriceCap) * PriceWeight
}

func deliveryScore(order models.Order) float64 {
	days := DefaultDeliveryDays
	if order.EstimatedDeliveryDays != nil {
		days = *order.EstimatedDeliveryDays
	}
	return (1 - float64(days)/DeliveryHorizonDays) * DeliveryWeight
}

func warrantyScore(order models.Order) float64 {
	score := float64(order.StandardWarranty) / WarrantyHorizonMonths * WarrantyWeight
	if order.ExtendedWarranty {
		score += float64(order.ExtendedWarrantyPeriod) / ExtendedWarrantyHorizonMonths * ExtendedWarrantyWeight
	}
	return score
}

func serviceScore(order models.Order) float64 {
	score := 0.0
	for _, offered := range []bool{
		order.QualityCertification,
		order.InstallationService,
		order.MaintenanceContract,
		order.FreeDelivery,
	} {
		if offered {
			score += ServiceBonus
		}
	}
	return score
}
