package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"procurement/internal/evaluator"
	"procurement/internal/metrics"
	"procurement/internal/models"
	"procurement/internal/workflow"

	"go.uber.org/zap"
)

// Repository is everything the service needs from storage. Lookups by id
// report a missing row with sql.ErrNoRows. Updates only apply to the state
// the service read: a demand still in stage from, a still pending order.
type Repository interface {
	AddDemand(ctx context.Context, demand models.Demand) (models.Demand, error)
	GetDemands(ctx context.Context, limit, offset int, createdBy string, stages []models.DemandStage) ([]models.Demand, error)
	GetDemandByUUID(ctx context.Context, UUID string) (models.Demand, error)
	UpdateDemand(ctx context.Context, demand models.Demand, from models.DemandStage) error

	AddTender(ctx context.Context, tender models.Tender, demand models.Demand) (models.Tender, error)
	GetTenders(ctx context.Context, limit, offset int) ([]models.Tender, error)
	GetTenderByUUID(ctx context.Context, UUID string) (models.Tender, error)

	AddOrder(ctx context.Context, order models.Order) (models.Order, error)
	GetOrders(ctx context.Context, limit, offset int, tenderId, supplier string) ([]models.Order, error)
	GetOrderByUUID(ctx context.Context, UUID string) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, UUID string, status models.OrderStatus) error
}

type Service struct {
	repo    Repository
	metrics *metrics.Registry
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewService(repo Repository, reg *metrics.Registry, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{repo: repo, metrics: reg, log: log, now: time.Now}
}

//// Demands

func (s *Service) AddDemand(ctx context.Context, session models.Session, demand models.Demand) (models.Demand, error) {
	if err := checkRole(session, models.RoleDepartmentHead); err != nil {
		return demand, fmt.Errorf("service.Service.AddDemand: %w", err)
	}

	demand.CreatedBy = session.Username
	demand.Stage = models.StagePendingLogistics
	demand.Rejection = nil

	demand, err := s.repo.AddDemand(ctx, demand)
	if err != nil {
		return demand, fmt.Errorf("service.Service.AddDemand: %w", err)
	}

	s.log.Infow("demand raised", "demand", demand.Id, "by", session.Username)
	return demand, nil
}

// GetDemands lists the demands the session works on: department heads get
// the demands they raised, approvers get the demands waiting for them.
func (s *Service) GetDemands(ctx context.Context, session models.Session, limit, offset int) ([]models.Demand, error) {
	if !session.Valid() {
		return nil, fmt.Errorf("service.Service.GetDemands: %w", models.ErrInvalidUser)
	}

	var createdBy string
	var stages []models.DemandStage

	if session.Role == models.RoleDepartmentHead {
		createdBy = session.Username
	} else {
		stages = workflow.VisibleStages(session.Role)
		if len(stages) == 0 {
			return []models.Demand{}, nil
		}
	}

	demands, err := s.repo.GetDemands(ctx, limit, offset, createdBy, stages)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetDemands: %w", err)
	}
	return demands, nil
}

// GetDemand is allowed to the demand's author and to every approver role.
func (s *Service) GetDemand(ctx context.Context, session models.Session, demandId string) (models.Demand, error) {
	if !session.Valid() {
		return models.Demand{}, fmt.Errorf("service.Service.GetDemand: %w", models.ErrInvalidUser)
	}

	demand, err := s.demandByUUID(ctx, demandId)
	if err != nil {
		return models.Demand{}, fmt.Errorf("service.Service.GetDemand: %w", err)
	}

	if !workflow.VisibleTo(demand, session) {
		return models.Demand{}, fmt.Errorf("service.Service.GetDemand: %w", models.ErrForbidden)
	}

	return demand, nil
}

func (s *Service) DemandDecision(ctx context.Context, session models.Session, demandId string, decision models.ApproveType, reason string) (models.Demand, error) {
	if !session.Valid() {
		return models.Demand{}, fmt.Errorf("service.Service.DemandDecision: %w", models.ErrInvalidUser)
	}

	demand, err := s.demandByUUID(ctx, demandId)
	if err != nil {
		return models.Demand{}, fmt.Errorf("service.Service.DemandDecision: %w", err)
	}

	from := demand.Stage
	switch decision {
	case models.ATApprove:
		demand, err = workflow.Approve(demand, session, s.now())
	case models.ATReject:
		demand, err = workflow.Reject(demand, session, reason, s.now())
	default:
		err = fmt.Errorf("unknown decision: %s", decision)
	}
	if err != nil {
		return models.Demand{}, fmt.Errorf("service.Service.DemandDecision: %w", err)
	}

	err = s.repo.UpdateDemand(ctx, demand, from)
	if err != nil {
		return models.Demand{}, fmt.Errorf("service.Service.DemandDecision: %w", err)
	}

	s.metrics.ObserveDemandDecision(string(session.Role), string(decision))
	s.log.Infow("demand decision", "demand", demand.Id, "by", session.Username, "role", session.Role, "decision", decision, "stage", demand.Stage)
	return demand, nil
}

//// Tenders

// PublishTender opens a tender for an approved demand and marks the demand
// as published in the same transaction.
func (s *Service) PublishTender(ctx context.Context, session models.Session, tender models.Tender) (models.Tender, error) {
	if err := checkRole(session, models.RoleProcurementOfficer); err != nil {
		return tender, fmt.Errorf("service.Service.PublishTender: %w", err)
	}

	demand, err := s.demandByUUID(ctx, tender.DemandId)
	if err != nil {
		return tender, fmt.Errorf("service.Service.PublishTender: %w", err)
	}

	demand, err = workflow.Publish(demand, session, s.now())
	if err != nil {
		return tender, fmt.Errorf("service.Service.PublishTender: %w", err)
	}

	tender.CreatedBy = session.Username
	tender, err = s.repo.AddTender(ctx, tender, demand)
	if err != nil {
		return tender, fmt.Errorf("service.Service.PublishTender: %w", err)
	}

	tender.Status = tender.StatusAt(s.now())
	s.log.Infow("tender published", "tender", tender.Id, "demand", demand.Id, "by", session.Username)
	return tender, nil
}

func (s *Service) GetTenders(ctx context.Context, session models.Session, limit, offset int) ([]models.Tender, error) {
	if !session.Valid() {
		return nil, fmt.Errorf("service.Service.GetTenders: %w", models.ErrInvalidUser)
	}

	tenders, err := s.repo.GetTenders(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetTenders: %w", err)
	}

	now := s.now()
	for i := range tenders {
		tenders[i].Status = tenders[i].StatusAt(now)
	}
	return tenders, nil
}

func (s *Service) GetTender(ctx context.Context, session models.Session, tenderId string) (models.Tender, error) {
	if !session.Valid() {
		return models.Tender{}, fmt.Errorf("service.Service.GetTender: %w", models.ErrInvalidUser)
	}

	tender, err := s.tenderByUUID(ctx, tenderId)
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.GetTender: %w", err)
	}
	return tender, nil
}

//// Orders

// AddOrder places a supplier's bid on a tender inside its bidding window.
func (s *Service) AddOrder(ctx context.Context, session models.Session, order models.Order) (models.Order, error) {
	if err := checkRole(session, models.RoleSupplier); err != nil {
		return order, fmt.Errorf("service.Service.AddOrder: %w", err)
	}

	tender, err := s.tenderByUUID(ctx, order.TenderId)
	if err != nil {
		return order, fmt.Errorf("service.Service.AddOrder: %w", err)
	}
	if tender.Status != models.TenderOpen {
		return order, fmt.Errorf("service.Service.AddOrder: %w: tender is %s", models.ErrTenderNotOpen, tender.Status)
	}

	order.Supplier = session.Username
	order.Status = models.OrderPending
	order, err = s.repo.AddOrder(ctx, order)
	if err != nil {
		return order, fmt.Errorf("service.Service.AddOrder: %w", err)
	}

	s.log.Infow("order placed", "order", order.Id, "tender", order.TenderId, "supplier", order.Supplier)
	return order, nil
}

func (s *Service) GetUserOrders(ctx context.Context, session models.Session, limit, offset int) ([]models.Order, error) {
	if err := checkRole(session, models.RoleSupplier); err != nil {
		return nil, fmt.Errorf("service.Service.GetUserOrders: %w", err)
	}

	orders, err := s.repo.GetOrders(ctx, limit, offset, "", session.Username)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetUserOrders: %w", err)
	}
	return orders, nil
}

// GetTenderOrders returns every order of the tender to the procurement
// officer, and only their own orders to a supplier.
func (s *Service) GetTenderOrders(ctx context.Context, session models.Session, tenderId string, limit, offset int) ([]models.Order, error) {
	if !session.Valid() {
		return nil, fmt.Errorf("service.Service.GetTenderOrders: %w", models.ErrInvalidUser)
	}

	var supplier string
	switch session.Role {
	case models.RoleProcurementOfficer:
	case models.RoleSupplier:
		supplier = session.Username
	default:
		return nil, fmt.Errorf("service.Service.GetTenderOrders: %w", models.ErrForbidden)
	}

	if _, err := s.tenderByUUID(ctx, tenderId); err != nil {
		return nil, fmt.Errorf("service.Service.GetTenderOrders: %w", err)
	}

	orders, err := s.repo.GetOrders(ctx, limit, offset, tenderId, supplier)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetTenderOrders: %w", err)
	}
	return orders, nil
}

// OrderDecision approves or rejects a pending order. A tender is awarded to
// at most one order.
func (s *Service) OrderDecision(ctx context.Context, session models.Session, orderId string, decision models.ApproveType) (models.Order, error) {
	if err := checkRole(session, models.RoleProcurementOfficer); err != nil {
		return models.Order{}, fmt.Errorf("service.Service.OrderDecision: %w", err)
	}

	order, err := s.orderByUUID(ctx, orderId)
	if err != nil {
		return models.Order{}, fmt.Errorf("service.Service.OrderDecision: %w", err)
	}
	if order.Status != models.OrderPending {
		return models.Order{}, fmt.Errorf("service.Service.OrderDecision: %w: order is %s", models.ErrOrderFinalized, order.Status)
	}

	var status models.OrderStatus
	switch decision {
	case models.ATApprove:
		status = models.OrderApproved
		orders, err := s.repo.GetOrders(ctx, 0, 0, order.TenderId, "")
		if err != nil {
			return models.Order{}, fmt.Errorf("service.Service.OrderDecision: %w", err)
		}
		for _, o := range orders {
			if o.Status == models.OrderApproved {
				return models.Order{}, fmt.Errorf("service.Service.OrderDecision: %w: order %s", models.ErrTenderAwarded, o.Id)
			}
		}
	case models.ATReject:
		status = models.OrderRejected
	default:
		return models.Order{}, fmt.Errorf("service.Service.OrderDecision: unknown decision: %s", decision)
	}

	err = s.repo.UpdateOrderStatus(ctx, order.Id, status)
	if err != nil {
		return models.Order{}, fmt.Errorf("service.Service.OrderDecision: %w", err)
	}

	order.Status = status
	s.metrics.ObserveOrderDecision(string(decision))
	s.log.Infow("order decision", "order", order.Id, "tender", order.TenderId, "by", session.Username, "decision", decision)
	return order, nil
}

//// Evaluation

// Evaluate ranks orders without touching storage.
func (s *Service) Evaluate(ctx context.Context, orders []models.Order) models.Ranking {
	start := time.Now()
	ranking := evaluator.Rank(orders)

	var best *float64
	if ranking.Best != nil {
		best = &ranking.Best.Score
	}
	s.metrics.ObserveEvaluation(len(orders), time.Since(start), best)
	s.log.Debugw("orders evaluated", "orders", len(orders), "best", best)
	return ranking
}

// EvaluateTenderOrders ranks every order placed on the tender. The ranking
// is a recommendation only, order statuses are left untouched.
func (s *Service) EvaluateTenderOrders(ctx context.Context, session models.Session, tenderId string) (models.Ranking, error) {
	if err := checkRole(session, models.RoleProcurementOfficer); err != nil {
		return models.Ranking{}, fmt.Errorf("service.Service.EvaluateTenderOrders: %w", err)
	}

	if _, err := s.tenderByUUID(ctx, tenderId); err != nil {
		return models.Ranking{}, fmt.Errorf("service.Service.EvaluateTenderOrders: %w", err)
	}

	orders, err := s.repo.GetOrders(ctx, 0, 0, tenderId, "")
	if err != nil {
		return models.Ranking{}, fmt.Errorf("service.Service.EvaluateTenderOrders: %w", err)
	}

	return s.Evaluate(ctx, orders), nil
}

//// Service

func checkRole(session models.Session, role models.Role) error {
	if !session.Valid() {
		return models.ErrInvalidUser
	}
	if session.Role != role {
		return fmt.Errorf("%w: requires %s", models.ErrForbidden, role)
	}
	return nil
}

func (s *Service) demandByUUID(ctx context.Context, UUID string) (models.Demand, error) {
	demand, err := s.repo.GetDemandByUUID(ctx, UUID)
	if errors.Is(err, sql.ErrNoRows) {
		return demand, models.ErrNoDemand
	}
	return demand, err
}

func (s *Service) tenderByUUID(ctx context.Context, UUID string) (models.Tender, error) {
	tender, err := s.repo.GetTenderByUUID(ctx, UUID)
	if errors.Is(err, sql.ErrNoRows) {
		return tender, models.ErrNoTender
	} else if err != nil {
		return tender, err
	}
	tender.Status = tender.StatusAt(s.now())
	return tender, nil
}

func (s *Service) orderByUUID(ctx context.Context, UUID string) (models.Order, error) {
	order, err := s.repo.GetOrderByUUID(ctx, UUID)
	if errors.Is(err, sql.ErrNoRows) {
		return order, models.ErrNoOrder
	}
	return order, err
}
