package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"associados_api/internal/common"
	"associados_api/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type AssociateRepository interface {
	Create(ctx context.Context, associate *model.Associate) error
	FindByID(ctx context.Context, id int64) (*model.Associate, error)
	List(ctx context.Context, limit, offset int) ([]model.Associate, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, associate *model.Associate) error
	Delete(ctx context.Context, id int64) error
	EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error)
	CPFInUse(ctx context.Context, cpf string, excludeID int64) (bool, error)
}

type pgAssociateRepository struct {
	db *sql.DB
}

func NewPgAssociateRepository(db *sql.DB) AssociateRepository {
	return &pgAssociateRepository{db: db}
}

// uniqueViolation turns a 23505 on the associates table into the same
// 422 the validator pre-check would have produced, keyed by the field
// named in the violated constraint.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "cpf") {
		return &common.ValidationError{Fields: map[string][]string{
			"cpf": {"CPF already in use."},
		}}
	}
	return &common.ValidationError{Fields: map[string][]string{
		"email": {"The email has already been taken."},
	}}
}

func (r *pgAssociateRepository) Create(ctx context.Context, associate *model.Associate) error {
	query := `INSERT INTO associates (name, email, cpf, telephone, city, state)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		associate.Name, associate.Email, associate.CPF,
		associate.Telephone, associate.City, associate.State,
	).Scan(&associate.ID, &associate.CreatedAt)
	if err != nil {
		if vErr := uniqueViolation(err); vErr != nil {
			return vErr
		}
		return fmt.Errorf("pgAssociateRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAssociateRepository) FindByID(ctx context.Context, id int64) (*model.Associate, error) {
	query := `SELECT id, name, email, cpf, telephone, city, state, created_at
	          FROM associates WHERE id = $1`
	associate := &model.Associate{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&associate.ID, &associate.Name, &associate.Email, &associate.CPF,
		&associate.Telephone, &associate.City, &associate.State, &associate.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAssociateRepository.FindByID: %w", err)
	}
	return associate, nil
}

func (r *pgAssociateRepository) List(ctx context.Context, limit, offset int) ([]model.Associate, error) {
	query := `SELECT id, name, email, cpf, telephone, city, state, created_at
	          FROM associates ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgAssociateRepository.List: %w", err)
	}
	defer rows.Close()

	associates := []model.Associate{}
	for rows.Next() {
		var a model.Associate
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Email, &a.CPF,
			&a.Telephone, &a.City, &a.State, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgAssociateRepository.List scan: %w", err)
		}
		associates = append(associates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAssociateRepository.List rows: %w", err)
	}
	return associates, nil
}

func (r *pgAssociateRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM associates`).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgAssociateRepository.Count: %w", err)
	}
	return total, nil
}

func (r *pgAssociateRepository) Update(ctx context.Context, associate *model.Associate) error {
	query := `UPDATE associates
	          SET name = $1, email = $2, cpf = $3, telephone = $4, city = $5, state = $6
	          WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		associate.Name, associate.Email, associate.CPF,
		associate.Telephone, associate.City, associate.State, associate.ID,
	)
	if err != nil {
		if vErr := uniqueViolation(err); vErr != nil {
			return vErr
		}
		return fmt.Errorf("pgAssociateRepository.Update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgAssociateRepository.Update rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgAssociateRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM associates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgAssociateRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgAssociateRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgAssociateRepository) EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM associates WHERE email = $1 AND id <> $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgAssociateRepository.EmailInUse: %w", err)
	}
	return exists, nil
}

func (r *pgAssociateRepository) CPFInUse(ctx context.Context, cpf string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM associates WHERE cpf = $1 AND id <> $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, cpf, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgAssociateRepository.CPFInUse: %w", err)
	}
	return exists, nil
}
