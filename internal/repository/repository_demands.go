package repository

import (
	"context"
	"database/sql"
	"fmt"

	"procurement/internal/models"
)

const demandColumns = `
		id,
		department,
		title,
		description,
		quantity,
		estimated_cost,
		created_by,
		stage,
		rejected_role,
		rejected_by,
		rejection_reason,
		rejected_at,
		created_at,
		updated_at`

func (repo *Repository) AddDemand(ctx context.Context, demand models.Demand) (models.Demand, error) {
	query := `
	INSERT INTO demands (department, title, description, quantity, estimated_cost, created_by, stage)
	VALUES
		($1, $2, $3, $4, $5, $6, $7)
	RETURNING
		id, created_at, updated_at
	`

	row := repo.db.QueryRowContext(ctx, query, demand.Department, demand.Title, demand.Description, demand.Quantity, demand.EstimatedCost, demand.CreatedBy, demand.Stage)
	err := row.Scan(&demand.Id, &demand.CreatedAt, &demand.UpdatedAt)
	if err != nil {
		return demand, fmt.Errorf("repository.Repository.AddDemand: %w", err)
	}

	return demand, nil
}

func (repo *Repository) prepDemandsQuery(limit, offset int, UUID, createdBy string, stages []models.DemandStage) (query string, queryParams []interface{}) {
	query = `
	SELECT` + demandColumns + `
	FROM demands
	$conditions$
	ORDER BY seq
	LIMIT $1
	OFFSET $2
	`

	queryParams = paging(limit, offset)
	conditions := make([]string, 0, 3)

	if len(UUID) > 0 {
		conditions = append(conditions, "id = $$")
		queryParams = append(queryParams, UUID)
	}

	if len(createdBy) > 0 {
		conditions = append(conditions, "created_by = $$")
		queryParams = append(queryParams, createdBy)
	}

	if stages != nil {
		conditions = append(conditions, "stage = any($$::varchar[])")
		queryParams = append(queryParams, sliceToSQLList(stages))
	}

	return applyConditions(query, conditions), queryParams
}

// GetDemands filters by creator and stage; an empty createdBy or a nil stages
// slice disables that filter, an empty non-nil slice matches nothing.
func (repo *Repository) GetDemands(ctx context.Context, limit, offset int, createdBy string, stages []models.DemandStage) ([]models.Demand, error) {
	query, params := repo.prepDemandsQuery(limit, offset, "", createdBy, stages)

	rows, err := repo.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetDemands: %w", err)
	}
	defer rows.Close()

	result := []models.Demand{}
	for rows.Next() {
		demand, err := scanDemand(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetDemands: rows scan error: %w", err)
		}
		result = append(result, demand)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetDemands: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) GetDemandByUUID(ctx context.Context, UUID string) (models.Demand, error) {
	query, params := repo.prepDemandsQuery(1, 0, UUID, "", nil)

	demand, err := scanDemand(repo.db.QueryRowContext(ctx, query, params...))
	if err != nil {
		return demand, fmt.Errorf("repository.Repository.GetDemandByUUID: %w", err)
	}
	return demand, nil
}

// UpdateDemand stores the new stage and rejection of demand only if the
// stored stage is still from. Otherwise it fails with models.ErrDemandFinalized.
func (repo *Repository) UpdateDemand(ctx context.Context, demand models.Demand, from models.DemandStage) error {
	err := repo.updateDemand(ctx, repo.db, demand, from)
	if err != nil {
		return fmt.Errorf("repository.Repository.UpdateDemand: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (repo *Repository) updateDemand(ctx context.Context, ex execer, demand models.Demand, from models.DemandStage) error {
	query := `
	UPDATE demands
	SET (stage, rejected_role, rejected_by, rejection_reason, rejected_at, updated_at) = ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	WHERE id = $6 AND stage = $7
	`

	var role, username, reason, at interface{}
	if demand.Rejection != nil {
		role = string(demand.Rejection.Role)
		username = demand.Rejection.Username
		reason = demand.Rejection.Reason
		at = demand.Rejection.At
	}

	res, err := ex.ExecContext(ctx, query, demand.Stage, role, username, reason, at, demand.Id, from)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: demand %s is no longer %s", models.ErrDemandFinalized, demand.Id, from)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDemand(row scanner) (models.Demand, error) {
	var demand models.Demand
	var role, username, reason sql.NullString
	var at sql.NullTime

	err := row.Scan(&demand.Id, &demand.Department, &demand.Title, &demand.Description, &demand.Quantity, &demand.EstimatedCost,
		&demand.CreatedBy, &demand.Stage, &role, &username, &reason, &at, &demand.CreatedAt, &demand.UpdatedAt)
	if err != nil {
		return demand, err
	}

	if role.Valid {
		demand.Rejection = &models.Rejection{
			Role:     models.Role(role.String),
			Username: username.String,
			Reason:   reason.String,
			At:       at.Time,
		}
	}
	return demand, nil
}
