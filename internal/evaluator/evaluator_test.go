package evaluator

import (
	"testing"

	"procurement/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int) *int { return &n }

func orderA() models.Order {
	return models.Order{
		Id:                    "a",
		TotalAmount:           decimal.NewFromInt(5000),
		EstimatedDeliveryDays: days(10),
		StandardWarranty:      12,
		QualityCertification:  true,
		FreeDelivery:          true,
	}
}

func TestScoreExample(t *testing.T) {
	scored := Score(orderA())

	assert.InDelta(t, 20.0, scored.PriceScore, 1e-9)
	assert.InDelta(t, 13.3333333, scored.DeliveryScore, 1e-6)
	assert.InDelta(t, 7.5, scored.WarrantyScore, 1e-9)
	assert.InDelta(t, 10.0, scored.ServiceScore, 1e-9)
	assert.InDelta(t, 50.8333333, scored.Score, 1e-6)
	assert.Equal(t, "a", scored.Id)
	assert.Zero(t, scored.Rank)
}

func TestScoreIsDeterministic(t *testing.T) {
	order := orderA()
	order.ExtendedWarranty = true
	order.ExtendedWarrantyPeriod = 7
	order.TotalAmount = decimal.RequireFromString("1234.56")

	require.Equal(t, Score(order), Score(order))
}

func TestScoreDefaults(t *testing.T) {
	scored := Score(models.Order{})

	assert.InDelta(t, PriceWeight, scored.PriceScore, 1e-9)
	// absent delivery time is scored as DefaultDeliveryDays
	assert.InDelta(t, (1-14.0/30.0)*20, scored.DeliveryScore, 1e-9)
	assert.Zero(t, scored.WarrantyScore)
	assert.Zero(t, scored.ServiceScore)

	explicit := Score(models.Order{EstimatedDeliveryDays: days(0)})
	assert.InDelta(t, DeliveryWeight, explicit.DeliveryScore, 1e-9)
}

func TestScoreOutOfRange(t *testing.T) {
	scored := Score(models.Order{
		TotalAmount:           decimal.NewFromInt(20000),
		EstimatedDeliveryDays: days(60),
		StandardWarranty:      -24,
	})

	assert.InDelta(t, -40.0, scored.PriceScore, 1e-9)
	assert.InDelta(t, -20.0, scored.DeliveryScore, 1e-9)
	assert.InDelta(t, -15.0, scored.WarrantyScore, 1e-9)
	assert.InDelta(t, -75.0, scored.Score, 1e-9)
}

func TestScoreMonotonicity(t *testing.T) {
	prev := Score(models.Order{TotalAmount: decimal.NewFromInt(15000)})
	for amount := int64(14000); amount >= -1000; amount -= 1000 {
		cur := Score(models.Order{TotalAmount: decimal.NewFromInt(amount)})
		require.GreaterOrEqual(t, cur.PriceScore, prev.PriceScore, "amount %d", amount)
		prev = cur
	}

	prev = Score(models.Order{EstimatedDeliveryDays: days(45)})
	for d := 44; d >= 0; d-- {
		cur := Score(models.Order{EstimatedDeliveryDays: days(d)})
		require.GreaterOrEqual(t, cur.DeliveryScore, prev.DeliveryScore, "days %d", d)
		prev = cur
	}
}

func TestScoreServiceFlags(t *testing.T) {
	tests := []struct {
		name string
		set  func(o *models.Order)
	}{
		{"quality certification", func(o *models.Order) { o.QualityCertification = true }},
		{"installation service", func(o *models.Order) { o.InstallationService = true }},
		{"maintenance contract", func(o *models.Order) { o.MaintenanceContract = true }},
		{"free delivery", func(o *models.Order) { o.FreeDelivery = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := orderA()
			base.QualityCertification = false
			base.FreeDelivery = false
			with := base
			tt.set(&with)

			before, after := Score(base), Score(with)
			assert.InDelta(t, ServiceBonus, after.ServiceScore-before.ServiceScore, 1e-9)
			assert.InDelta(t, ServiceBonus, after.Score-before.Score, 1e-9)
			assert.Equal(t, before.WarrantyScore, after.WarrantyScore)
		})
	}

	all := Score(models.Order{QualityCertification: true, InstallationService: true, MaintenanceContract: true, FreeDelivery: true})
	assert.InDelta(t, 20.0, all.ServiceScore, 1e-9)
}

func TestScoreExtendedWarrantyGating(t *testing.T) {
	base := Score(models.Order{StandardWarranty: 24})
	for _, period := range []int{0, 6, 12, 36, -12} {
		scored := Score(models.Order{StandardWarranty: 24, ExtendedWarrantyPeriod: period})
		require.Equal(t, base.WarrantyScore, scored.WarrantyScore, "period %d", period)
	}

	extended := Score(models.Order{StandardWarranty: 24, ExtendedWarranty: true, ExtendedWarrantyPeriod: 12})
	assert.InDelta(t, 20.0, extended.WarrantyScore, 1e-9)

	half := Score(models.Order{ExtendedWarranty: true, ExtendedWarrantyPeriod: 6})
	assert.InDelta(t, 2.5, half.WarrantyScore, 1e-9)
}

func TestRankEmpty(t *testing.T) {
	for _, orders := range [][]models.Order{nil, {}} {
		ranking := Rank(orders)
		assert.Nil(t, ranking.Best)
		assert.NotNil(t, ranking.Orders)
		assert.Empty(t, ranking.Orders)
	}
}

func TestRankSingle(t *testing.T) {
	ranking := Rank([]models.Order{orderA()})

	require.NotNil(t, ranking.Best)
	require.Len(t, ranking.Orders, 1)
	assert.Equal(t, "a", ranking.Best.Id)
	assert.Equal(t, 1, ranking.Best.Rank)
	assert.InDelta(t, 50.8333333, ranking.Best.Score, 1e-6)
}

func TestRankPicksCheaperOffer(t *testing.T) {
	a := orderA()
	b := orderA()
	b.Id = "b"
	b.TotalAmount = decimal.NewFromInt(9000)

	ranking := Rank([]models.Order{b, a})

	require.NotNil(t, ranking.Best)
	assert.Equal(t, "a", ranking.Best.Id)
	assert.InDelta(t, 4.0, ranking.Orders[1].PriceScore, 1e-9)
	assert.Less(t, ranking.Orders[1].Score, ranking.Orders[0].Score)
	assert.Equal(t, []int{1, 2}, []int{ranking.Orders[0].Rank, ranking.Orders[1].Rank})
}

func TestRankTieKeepsInputOrder(t *testing.T) {
	// 40 + 20 on one side, 35 + 20 + 5 on the other
	first := models.Order{Id: "first", EstimatedDeliveryDays: days(0)}
	second := models.Order{Id: "second", TotalAmount: decimal.NewFromInt(1250), EstimatedDeliveryDays: days(0), QualityCertification: true}
	require.Equal(t, Score(first).Score, Score(second).Score)

	ranking := Rank([]models.Order{first, second})
	assert.Equal(t, "first", ranking.Best.Id)

	ranking = Rank([]models.Order{second, first})
	assert.Equal(t, "second", ranking.Best.Id)

	dup := orderA()
	dup.Id = "dup"
	ranking = Rank([]models.Order{orderA(), dup})
	assert.Equal(t, "a", ranking.Best.Id)
	assert.Equal(t, "dup", ranking.Orders[1].Id)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	expensive := orderA()
	expensive.Id = "expensive"
	expensive.TotalAmount = decimal.NewFromInt(9999)
	orders := []models.Order{expensive, orderA()}
	copied := append([]models.Order(nil), orders...)

	ranking := Rank(orders)

	assert.Equal(t, copied, orders)
	assert.Equal(t, "a", ranking.Best.Id)

	ranking.Orders[0].Score = -1
	assert.NotEqual(t, ranking.Orders[0].Score, ranking.Best.Score)
}

func TestRankResultDoesNotShareDeliveryDays(t *testing.T) {
	orders := []models.Order{orderA()}

	ranking := Rank(orders)
	*ranking.Orders[0].EstimatedDeliveryDays = 99
	*ranking.Best.EstimatedDeliveryDays = 98

	assert.Equal(t, 10, *orders[0].EstimatedDeliveryDays)
	assert.Equal(t, 99, *ranking.Orders[0].EstimatedDeliveryDays)

	scored := Score(orders[0])
	*scored.EstimatedDeliveryDays = 1
	assert.Equal(t, 10, *orders[0].EstimatedDeliveryDays)
}

func TestValidate(t *testing.T) {
	huge := orderA()
	huge.TotalAmount = decimal.RequireFromString("1e400")
	negative := orderA()
	negative.TotalAmount = decimal.RequireFromString("-1e400")
	large := orderA()
	large.TotalAmount = decimal.RequireFromString("1e300")

	require.NoError(t, Validate(nil))
	require.NoError(t, Validate([]models.Order{orderA(), large}))
	require.ErrorIs(t, Validate([]models.Order{orderA(), huge}), ErrNotFinite)
	require.ErrorIs(t, Validate([]models.Order{negative}), ErrNotFinite)
}
