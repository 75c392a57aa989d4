package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/models"

	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

func (repo *Repository) AddOrder(ctx context.Context, order models.Order) (models.Order, error) {
	query := `
	INSERT INTO orders (
		tender_id, supplier, total_amount, estimated_delivery_days, standard_warranty,
		extended_warranty, extended_warranty_period, quality_certification,
		installation_service, maintenance_contract, free_delivery, status
	)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'Pending')
	RETURNING
		id, status, created_at, updated_at
	`

	var days interface{}
	if order.EstimatedDeliveryDays != nil {
		days = *order.EstimatedDeliveryDays
	}

	row := repo.db.QueryRowContext(ctx, query, order.TenderId, order.Supplier, order.TotalAmount, days, order.StandardWarranty,
		order.ExtendedWarranty, order.ExtendedWarrantyPeriod, order.QualityCertification,
		order.InstallationService, order.MaintenanceContract, order.FreeDelivery)
	err := row.Scan(&order.Id, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return order, fmt.Errorf("repository.Repository.AddOrder: %w", err)
	}

	return order, nil
}

func (repo *Repository) prepOrdersQuery(limit, offset int, tenderId, supplier, UUID string) (query string, queryParams []interface{}) {
	query = `
	SELECT
		id,
		tender_id,
		supplier,
		total_amount,
		estimated_delivery_days,
		standard_warranty,
		extended_warranty,
		extended_warranty_period,
		quality_certification,
		installation_service,
		maintenance_contract,
		free_delivery,
		status,
		created_at,
		updated_at
	FROM orders
	$conditions$
	ORDER BY seq
	LIMIT $1
	OFFSET $2
	`

	queryParams = paging(limit, offset)
	conditions := make([]string, 0, 3)

	if len(tenderId) > 0 {
		conditions = append(conditions, "tender_id = $$")
		queryParams = append(queryParams, tenderId)
	}
	if len(supplier) > 0 {
		conditions = append(conditions, "supplier = $$")
		queryParams = append(queryParams, supplier)
	}
	if len(UUID) > 0 {
		conditions = append(conditions, "id = $$")
		queryParams = append(queryParams, UUID)
	}

	return applyConditions(query, conditions), queryParams
}

// GetOrders returns orders in submission order, which is also the tie-break
// order used when ranking them.
func (repo *Repository) GetOrders(ctx context.Context, limit, offset int, tenderId, supplier string) ([]models.Order, error) {
	query, params := repo.prepOrdersQuery(limit, offset, tenderId, supplier, "")

	rows, err := repo.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetOrders: %w", err)
	}
	defer rows.Close()

	result := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetOrders: rows scan error: %w", err)
		}
		result = append(result, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetOrders: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) GetOrderByUUID(ctx context.Context, UUID string) (models.Order, error) {
	query, params := repo.prepOrdersQuery(1, 0, "", "", UUID)

	order, err := scanOrder(repo.db.QueryRowContext(ctx, query, params...))
	if err != nil {
		return order, fmt.Errorf("repository.Repository.GetOrderByUUID: %w", err)
	}
	return order, nil
}

// UpdateOrderStatus decides a pending order. It fails with
// models.ErrOrderFinalized when the order was already decided and with
// models.ErrTenderAwarded when another order of the tender is approved.
func (repo *Repository) UpdateOrderStatus(ctx context.Context, UUID string, status models.OrderStatus) error {
	query := `
	UPDATE orders
	SET (status, updated_at) = ($1, CURRENT_TIMESTAMP)
	WHERE id = $2 AND status = 'Pending'
	`

	res, err := repo.db.ExecContext(ctx, query, status, UUID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "orders_one_approved_idx" {
		return fmt.Errorf("repository.Repository.UpdateOrderStatus: %w", models.ErrTenderAwarded)
	} else if err != nil {
		return fmt.Errorf("repository.Repository.UpdateOrderStatus: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.Repository.UpdateOrderStatus: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repository.Repository.UpdateOrderStatus: %w: order %s is not pending", models.ErrOrderFinalized, UUID)
	}
	return nil
}

func scanOrder(row scanner) (models.Order, error) {
	var order models.Order
	var days sql.NullInt64

	err := row.Scan(&order.Id, &order.TenderId, &order.Supplier, &order.TotalAmount, &days, &order.StandardWarranty,
		&order.ExtendedWarranty, &order.ExtendedWarrantyPeriod, &order.QualityCertification,
		&order.InstallationService, &order.MaintenanceContract, &order.FreeDelivery,
		&order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return order, err
	}

	if days.Valid {
		d := int(days.Int64)
		order.EstimatedDeliveryDays = &d
	}
	return order, nil
}
