package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"procurement/internal/evaluator"
	"procurement/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// New demand request

type NewDemandReq struct {
	Department    string          `json:"department"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	EstimatedCost decimal.Decimal `json:"estimatedCost"`
}

func ParseNewDemandReq(data []byte) (*NewDemandReq, error) {
	d := &NewDemandReq{}

	err := json.Unmarshal(data, d)
	if err != nil {
		return nil, err
	}

	if len(d.Title) == 0 {
		return nil, errors.New("field 'title' is required")
	}
	if d.Quantity <= 0 {
		return nil, fmt.Errorf("field 'quantity' should be positive, got %d", d.Quantity)
	}
	if d.EstimatedCost.IsNegative() {
		return nil, fmt.Errorf("field 'estimatedCost' should not be negative, got %s", d.EstimatedCost)
	}
	if err = checkAmountLimit(d.EstimatedCost, "estimatedCost"); err != nil {
		return nil, err
	}

	if err = checkLengthLimit(d.Department, "department", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(d.Title, "title", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(d.Description, "description", 500); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *NewDemandReq) Demand() models.Demand {
	return models.Demand{
		Department:    d.Department,
		Title:         d.Title,
		Description:   d.Description,
		Quantity:      d.Quantity,
		EstimatedCost: d.EstimatedCost,
	}
}

// New tender request

type NewTenderReq struct {
	DemandId    string    `json:"demandId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OpeningDate time.Time `json:"openingDate"`
	ClosingDate time.Time `json:"closingDate"`
}

func ParseNewTenderReq(data []byte) (*NewTenderReq, error) {
	t := &NewTenderReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if err = checkUUID(t.DemandId, "demandId"); err != nil {
		return nil, err
	}
	if len(t.Title) == 0 {
		return nil, errors.New("field 'title' is required")
	}
	if t.OpeningDate.IsZero() || t.ClosingDate.IsZero() {
		return nil, errors.New("fields 'openingDate' and 'closingDate' are required")
	}
	if t.ClosingDate.Before(t.OpeningDate) {
		return nil, fmt.Errorf("closing date %s is before opening date %s", t.ClosingDate.Format(time.RFC3339), t.OpeningDate.Format(time.RFC3339))
	}

	if err = checkLengthLimit(t.Title, "title", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.Description, "description", 500); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *NewTenderReq) Tender() models.Tender {
	return models.Tender{
		DemandId:    t.DemandId,
		Title:       t.Title,
		Description: t.Description,
		OpeningDate: t.OpeningDate,
		ClosingDate: t.ClosingDate,
	}
}

// New order request

type NewOrderReq struct {
	TenderId               string          `json:"tenderId"`
	TotalAmount            decimal.Decimal `json:"totalAmount"`
	EstimatedDeliveryDays  *int            `json:"estimatedDeliveryDays"`
	StandardWarranty       int             `json:"standardWarranty"`
	ExtendedWarranty       bool            `json:"extendedWarranty"`
	ExtendedWarrantyPeriod int             `json:"extendedWarrantyPeriod"`
	QualityCertification   bool            `json:"qualityCertification"`
	InstallationService    bool            `json:"installationService"`
	MaintenanceContract    bool            `json:"maintenanceContract"`
	FreeDelivery           bool            `json:"freeDelivery"`
}

// ParseNewOrderReq validates an order before it is stored. Evaluation alone
// accepts any values, see ParseEvaluateReq.
func ParseNewOrderReq(data []byte) (*NewOrderReq, error) {
	o := &NewOrderReq{}

	err := json.Unmarshal(data, o)
	if err != nil {
		return nil, err
	}

	if err = checkUUID(o.TenderId, "tenderId"); err != nil {
		return nil, err
	}
	if o.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("field 'totalAmount' should not be negative, got %s", o.TotalAmount)
	}
	if err = checkAmountLimit(o.TotalAmount, "totalAmount"); err != nil {
		return nil, err
	}
	if o.EstimatedDeliveryDays != nil && *o.EstimatedDeliveryDays < 0 {
		return nil, fmt.Errorf("field 'estimatedDeliveryDays' should not be negative, got %d", *o.EstimatedDeliveryDays)
	}
	if o.StandardWarranty < 0 {
		return nil, fmt.Errorf("field 'standardWarranty' should not be negative, got %d", o.StandardWarranty)
	}
	if o.ExtendedWarrantyPeriod < 0 {
		return nil, fmt.Errorf("field 'extendedWarrantyPeriod' should not be negative, got %d", o.ExtendedWarrantyPeriod)
	}

	return o, nil
}

func (o *NewOrderReq) Order() models.Order {
	return models.Order{
		TenderId:               o.TenderId,
		TotalAmount:            o.TotalAmount,
		EstimatedDeliveryDays:  o.EstimatedDeliveryDays,
		StandardWarranty:       o.StandardWarranty,
		ExtendedWarranty:       o.ExtendedWarranty,
		ExtendedWarrantyPeriod: o.ExtendedWarrantyPeriod,
		QualityCertification:   o.QualityCertification,
		InstallationService:    o.InstallationService,
		MaintenanceContract:    o.MaintenanceContract,
		FreeDelivery:           o.FreeDelivery,
	}
}

// Evaluate request

// ParseEvaluateReq reads a JSON array of orders. Values are not range
// checked beyond what keeps the score finite.
func ParseEvaluateReq(data []byte) ([]models.Order, error) {
	var orders []models.Order

	err := json.Unmarshal(data, &orders)
	if err != nil {
		return nil, err
	}

	if err = evaluator.Validate(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}

// maxAmount is the first value that does not fit the NUMERIC(14, 2) columns.
var maxAmount = decimal.New(1, 12)

func checkAmountLimit(amount decimal.Decimal, fieldName string) error {
	if amount.Round(2).Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("field '%s' exceeds amount limit: %s", fieldName, amount)
	}
	return nil
}

func checkUUID(str, fieldName string) error {
	if _, err := uuid.Parse(str); err != nil {
		return fmt.Errorf("field '%s' is not a valid uuid: '%s'", fieldName, str)
	}
	return nil
}
