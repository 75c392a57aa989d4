package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"procurement/internal/config"

	postgres "procurement/internal/repository/db"

	"go.uber.org/zap"
)

type Repository struct {
	db  *sql.DB
	cfg *config.PostgresConfig
	log *zap.SugaredLogger
}

func NewRepository(db *sql.DB, cfg *config.PostgresConfig, log *zap.SugaredLogger) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  db,
		cfg: cfg,
		log: log,
	}

	if repo.log == nil {
		repo.log = zap.NewNop().Sugar()
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = postgres.NewPostgresDB(repo.cfg, repo.log)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open postgres db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp == "true" {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (repo *Repository) MigrateUp() error {
	err := postgres.MigrateUp(repo.db, repo.cfg.MigrationsURL, repo.log)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	err := postgres.MigrateDown(repo.db, repo.cfg.MigrationsURL, repo.log)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown == "true" {
		migErr = repo.MigrateDown()
	}

	err := repo.db.Close()
	return errors.Join(migErr, err)
}

//// Service

func wrapRollbackErr(tx *sql.Tx, err error) error {
	rollerr := tx.Rollback()
	if rollerr == nil {
		return err
	}
	return fmt.Errorf("failed to rollback transaction after previous error: %w, %w", rollerr, err)
}

// paging returns the LIMIT and OFFSET parameters, a non-positive limit means no limit.
func paging(limit, offset int) []interface{} {
	params := make([]interface{}, 0, 5)
	if limit <= 0 {
		params = append(params, nil)
	} else {
		params = append(params, limit)
	}
	if offset < 0 {
		offset = 0
	}
	return append(params, offset)
}

// applyConditions numbers the "$$" placeholders of conditions after the
// LIMIT/OFFSET parameters and substitutes them for $conditions$ in query.
func applyConditions(query string, conditions []string) string {
	condStr := ""
	if len(conditions) > 0 {
		for i := 0; i < len(conditions); i++ {
			conditions[i] = strings.Replace(conditions[i], "$$", "$"+strconv.Itoa(i+3), -1)
		}
		condStr = "WHERE " + strings.Join(conditions, " AND ")
	}
	return strings.Replace(query, "$conditions$", condStr, -1)
}

func sliceToSQLList[T ~string](t []T) string {
	parts := make([]string, 0, len(t))
	for _, v := range t {
		parts = append(parts, `"`+string(v)+`"`)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
