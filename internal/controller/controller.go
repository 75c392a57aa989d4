package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"procurement/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	AddDemand(ctx context.Context, session models.Session, demand models.Demand) (models.Demand, error)
	GetDemands(ctx context.Context, session models.Session, limit, offset int) ([]models.Demand, error)
	GetDemand(ctx context.Context, session models.Session, demandId string) (models.Demand, error)
	DemandDecision(ctx context.Context, session models.Session, demandId string, decision models.ApproveType, reason string) (models.Demand, error)

	PublishTender(ctx context.Context, session models.Session, tender models.Tender) (models.Tender, error)
	GetTenders(ctx context.Context, session models.Session, limit, offset int) ([]models.Tender, error)
	GetTender(ctx context.Context, session models.Session, tenderId string) (models.Tender, error)

	AddOrder(ctx context.Context, session models.Session, order models.Order) (models.Order, error)
	GetUserOrders(ctx context.Context, session models.Session, limit, offset int) ([]models.Order, error)
	GetTenderOrders(ctx context.Context, session models.Session, tenderId string, limit, offset int) ([]models.Order, error)
	OrderDecision(ctx context.Context, session models.Session, orderId string, decision models.ApproveType) (models.Order, error)

	Evaluate(ctx context.Context, orders []models.Order) models.Ranking
	EvaluateTenderOrders(ctx context.Context, session models.Session, tenderId string) (models.Ranking, error)
}

type Controller struct {
	service Service
	log     *zap.SugaredLogger
}

func NewController(service Service, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controller{service: service, log: log}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Evaluation

// POST /api/evaluate
func (c *Controller) Evaluate(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	orders, err := ParseEvaluateReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "request body should be a JSON array of orders: "+err.Error())
		return
	}

	c.marshalResponse(w, c.service.Evaluate(r.Context(), orders))
}

// GET /api/orders/{tenderId}/evaluation
func (c *Controller) TenderEvaluation(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	tenderId, ok := c.pathUUID(w, r, "tenderId")
	if !ok {
		return
	}

	ranking, err := c.service.EvaluateTenderOrders(r.Context(), session, tenderId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, ranking)
}

//// Demands

// POST /api/demands/new
func (c *Controller) NewDemand(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewDemandReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	demand, err := c.service.AddDemand(r.Context(), session, req.Demand())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, demand)
}

// GET /api/demands/my
func (c *Controller) MyDemands(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	limit, offset, ok := c.paging(w, r.URL.Query())
	if !ok {
		return
	}

	demands, err := c.service.GetDemands(r.Context(), session, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, demands)
}

// GET /api/demands/{demandId}
func (c *Controller) GetDemand(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	demandId, ok := c.pathUUID(w, r, "demandId")
	if !ok {
		return
	}

	demand, err := c.service.GetDemand(r.Context(), session, demandId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, demand)
}

// PUT /api/demands/{demandId}/decision
func (c *Controller) DemandDecision(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	demandId, ok := c.pathUUID(w, r, "demandId")
	if !ok {
		return
	}

	query := r.URL.Query()
	decision := models.ApproveType(query.Get("decision"))
	if !models.ValidApproveType(decision) {
		c.errorResponse(w, http.StatusBadRequest, "empty or invalid decision supplied")
		return
	}

	reason := query.Get("reason")
	if decision == models.ATReject && len(reason) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "rejection requires a reason")
		return
	}
	if err := checkLengthLimit(reason, "reason", 500); err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	demand, err := c.service.DemandDecision(r.Context(), session, demandId, decision, reason)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, demand)
}

//// Tenders

// POST /api/tenders/new
func (c *Controller) NewTender(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewTenderReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tender, err := c.service.PublishTender(r.Context(), session, req.Tender())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tender)
}

// GET /api/tenders
func (c *Controller) GetTenders(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	limit, offset, ok := c.paging(w, r.URL.Query())
	if !ok {
		return
	}

	tenders, err := c.service.GetTenders(r.Context(), session, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tenders)
}

// GET /api/tenders/{tenderId}
func (c *Controller) GetTender(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	tenderId, ok := c.pathUUID(w, r, "tenderId")
	if !ok {
		return
	}

	tender, err := c.service.GetTender(r.Context(), session, tenderId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tender)
}

//// Orders

// POST /api/orders/new
func (c *Controller) NewOrder(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewOrderReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := c.service.AddOrder(r.Context(), session, req.Order())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, order)
}

// GET /api/orders/my
func (c *Controller) MyOrders(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	limit, offset, ok := c.paging(w, r.URL.Query())
	if !ok {
		return
	}

	orders, err := c.service.GetUserOrders(r.Context(), session, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, orders)
}

// GET /api/orders/{tenderId}/list
func (c *Controller) TenderOrders(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	tenderId, ok := c.pathUUID(w, r, "tenderId")
	if !ok {
		return
	}

	limit, offset, ok := c.paging(w, r.URL.Query())
	if !ok {
		return
	}

	orders, err := c.service.GetTenderOrders(r.Context(), session, tenderId, limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, orders)
}

// PUT /api/orders/{orderId}/decision
func (c *Controller) OrderDecision(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	orderId, ok := c.pathUUID(w, r, "orderId")
	if !ok {
		return
	}

	decision := models.ApproveType(r.URL.Query().Get("decision"))
	if !models.ValidApproveType(decision) {
		c.errorResponse(w, http.StatusBadRequest, "empty or invalid decision supplied")
		return
	}

	order, err := c.service.OrderDecision(r.Context(), session, orderId, decision)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, order)
}

// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

// session reads the acting user from the username and role query parameters.
func (c *Controller) session(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	query := r.URL.Query()
	session := models.Session{
		Username: query.Get("username"),
		Role:     models.Role(query.Get("role")),
	}
	if !session.Valid() {
		c.errorResponse(w, http.StatusUnauthorized, "empty username or unknown role supplied")
		return session, false
	}
	if err := checkLengthLimit(session.Username, "username", 100); err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return session, false
	}
	return session, true
}

func (c *Controller) pathUUID(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	val := r.PathValue(key)
	if _, err := uuid.Parse(val); err != nil {
		c.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid %s supplied: '%s'", key, val))
		return "", false
	}
	return val, true
}

func (c *Controller) paging(w http.ResponseWriter, query url.Values) (limit, offset int, ok bool) {
	limit, err := c.getQueryInt(query, "limit")
	if err != nil || limit < 0 {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return 0, 0, false
	}

	offset, err = c.getQueryInt(query, "offset")
	if err != nil || offset < 0 {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return 0, 0, false
	}

	return limit, offset, true
}

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.Atoi(strs[0])
	}
	return 0, nil
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		c.log.Errorw("controller.Controller.errorResponse", "error", err)
		return
	}

	_, err = w.Write(data)
	if err != nil {
		c.log.Errorw("controller.Controller.errorResponse", "error", err)
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidUser):
		c.errorResponse(w, http.StatusUnauthorized, "user is empty or has an unknown role")
	case errors.Is(err, models.ErrForbidden):
		c.errorResponse(w, http.StatusForbidden, "user have no permission for requested action")
	case errors.Is(err, models.ErrNoDemand):
		c.errorResponse(w, http.StatusNotFound, "requested demand does not exist")
	case errors.Is(err, models.ErrNoTender):
		c.errorResponse(w, http.StatusNotFound, "requested tender does not exist")
	case errors.Is(err, models.ErrNoOrder):
		c.errorResponse(w, http.StatusNotFound, "requested order does not exist")
	case errors.Is(err, models.ErrDemandFinalized):
		c.errorResponse(w, http.StatusForbidden, "requested demand is already approved or rejected")
	case errors.Is(err, models.ErrDemandNotApproved):
		c.errorResponse(w, http.StatusForbidden, "requested demand has not been approved for a tender")
	case errors.Is(err, models.ErrTenderNotOpen):
		c.errorResponse(w, http.StatusForbidden, "requested tender is not open for orders")
	case errors.Is(err, models.ErrOrderFinalized):
		c.errorResponse(w, http.StatusForbidden, "requested order is already approved or rejected")
	case errors.Is(err, models.ErrTenderAwarded):
		c.errorResponse(w, http.StatusForbidden, "tender already has an approved order")
	default:
		c.log.Errorw("controller: unhandled service error", "error", err)
		c.errorResponse(w, http.StatusInternalServerError, "internal server error: "+err.Error())
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(d)
	if err != nil {
		c.log.Errorw("controller.Controller.marshalResponse", "error", err)
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
