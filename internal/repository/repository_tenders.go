package repository

import (
	"context"
	"errors"
	"fmt"

	"procurement/internal/models"

	"github.com/lib/pq"
)

// AddTender stores the tender and moves its approved demand to the stage
// given in demand in a single transaction.
func (repo *Repository) AddTender(ctx context.Context, tender models.Tender, demand models.Demand) (models.Tender, error) {
	query := `
	INSERT INTO tenders (demand_id, title, description, opening_date, closing_date, created_by)
	VALUES
		($1, $2, $3, $4, $5, $6)
	RETURNING
		id, created_at, updated_at
	`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return tender, fmt.Errorf("repository.Repository.AddTender: failed to start transaction: %w", err)
	}

	row := tx.QueryRowContext(ctx, query, tender.DemandId, tender.Title, tender.Description, tender.OpeningDate, tender.ClosingDate, tender.CreatedBy)
	err = row.Scan(&tender.Id, &tender.CreatedAt, &tender.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		// the demand already has a tender
		return tender, fmt.Errorf("repository.Repository.AddTender: %w: %w", models.ErrDemandNotApproved, wrapRollbackErr(tx, err))
	} else if err != nil {
		return tender, fmt.Errorf("repository.Repository.AddTender: scan failed: %w", wrapRollbackErr(tx, err))
	}

	err = repo.updateDemand(ctx, tx, demand, models.StageApproved)
	if errors.Is(err, models.ErrDemandFinalized) {
		return tender, fmt.Errorf("repository.Repository.AddTender: %w: %w", models.ErrDemandNotApproved, wrapRollbackErr(tx, err))
	} else if err != nil {
		return tender, fmt.Errorf("repository.Repository.AddTender: %w", wrapRollbackErr(tx, err))
	}

	err = tx.Commit()
	if err != nil {
		return tender, fmt.Errorf("repository.Repository.AddTender: failed to commit transaction: %w", err)
	}

	return tender, nil
}

func (repo *Repository) prepTendersQuery(limit, offset int, UUID string) (query string, queryParams []interface{}) {
	query = `
	SELECT
		id,
		demand_id,
		title,
		description,
		opening_date,
		closing_date,
		created_by,
		created_at,
		updated_at
	FROM tenders
	$conditions$
	ORDER BY closing_date DESC, id
	LIMIT $1
	OFFSET $2
	`

	queryParams = paging(limit, offset)
	conditions := make([]string, 0, 1)

	if len(UUID) > 0 {
		conditions = append(conditions, "id = $$")
		queryParams = append(queryParams, UUID)
	}

	return applyConditions(query, conditions), queryParams
}

func (repo *Repository) GetTenders(ctx context.Context, limit, offset int) ([]models.Tender, error) {
	query, params := repo.prepTendersQuery(limit, offset, "")

	rows, err := repo.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetTenders: %w", err)
	}
	defer rows.Close()

	result := []models.Tender{}
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetTenders: row scan failed: %w", err)
		}
		result = append(result, tender)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetTenders: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) GetTenderByUUID(ctx context.Context, UUID string) (models.Tender, error) {
	query, params := repo.prepTendersQuery(1, 0, UUID)

	tender, err := scanTender(repo.db.QueryRowContext(ctx, query, params...))
	if err != nil {
		return tender, fmt.Errorf("repository.Repository.GetTenderByUUID: %w", err)
	}
	return tender, nil
}

func scanTender(row scanner) (models.Tender, error) {
	var tender models.Tender
	err := row.Scan(&tender.Id, &tender.DemandId, &tender.Title, &tender.Description, &tender.OpeningDate, &tender.ClosingDate,
		&tender.CreatedBy, &tender.CreatedAt, &tender.UpdatedAt)
	return tender, err
}
