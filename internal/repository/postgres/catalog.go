package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *catalogRepository) ListTests(ctx context.Context) ([]*model.Test, error) {
	var tests []*model.Test
	if err := r.db.SelectContext(ctx, &tests,
		`SELECT id, name, price FROM tests ORDER BY name ASC`,
	); err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, nil
}

func (r *catalogRepository) GetTestsByIDs(ctx context.Context, ids []int64) ([]*model.Test, error) {
	if len(ids) == 0 {
		return []*model.Test{}, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, price FROM tests WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build test query: %w", err)
	}
	query = r.db.Rebind(query)

	var tests []*model.Test
	if err := r.db.SelectContext(ctx, &tests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get tests: %w", err)
	}
	return tests, nil
}

func (r *catalogRepository) GetTest(ctx context.Context, id int64) (*model.Test, error) {
	var test model.Test
	if err := r.db.GetContext(ctx, &test,
		`SELECT id, name, price FROM tests WHERE id = $1`, id,
	); err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return &test, nil
}

func (r *catalogRepository) CreateTest(ctx context.Context, test *model.Test) error {
	if err := r.db.QueryRowContext(ctx,
		`INSERT INTO tests (name, price) VALUES ($1, $2) RETURNING id`,
		test.Name, test.Price,
	).Scan(&test.ID); err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpdateTest(ctx context.Context, test *model.Test) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tests SET name = $1, price = $2 WHERE id = $3`,
		test.Name, test.Price, test.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("test not found")
	}
	return nil
}

func (r *catalogRepository) ListMedications(ctx context.Context) ([]*model.Medication, error) {
	var medications []*model.Medication
	if err := r.db.SelectContext(ctx, &medications,
		`SELECT id, name, price_per_unit FROM medications ORDER BY name ASC`,
	); err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

func (r *catalogRepository) GetMedication(ctx context.Context, id int64) (*model.Medication, error) {
	var medication model.Medication
	if err := r.db.GetContext(ctx, &medication,
		`SELECT id, name, price_per_unit FROM medications WHERE id = $1`, id,
	); err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return &medication, nil
}

func (r *catalogRepository) CreateMedication(ctx context.Context, medication *model.Medication) error {
	if err := r.db.QueryRowContext(ctx,
		`INSERT INTO medications (name, price_per_unit) VALUES ($1, $2) RETURNING id`,
		medication.Name, medication.PricePerUnit,
	).Scan(&medication.ID); err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpdateMedication(ctx context.Context, medication *model.Medication) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE medications SET name = $1, price_per_unit = $2 WHERE id = $3`,
		medication.Name, medication.PricePerUnit, medication.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("medication not found")
	}
	return nil
}

func (r *catalogRepository) ListSpecializations(ctx context.Context) ([]*model.Specialization, error) {
	var specializations []*model.Specialization
	if err := r.db.SelectContext(ctx, &specializations,
		`SELECT id, name FROM specializations ORDER BY name ASC`,
	); err != nil {
		return nil, fmt.Errorf("failed to list specializations: %w", err)
	}
	return specializations, nil
}
