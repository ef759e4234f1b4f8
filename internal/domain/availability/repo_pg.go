package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Replace(ctx context.Context, doctorID uuid.UUID, rules []*Rule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM availability_rules WHERE doctor_id = $1`, doctorID); err != nil {
		return fmt.Errorf("clearing availability: %w", err)
	}

	if len(rules) > 0 {
		batchRows := make([][]interface{}, 0, len(rules))
		for _, rule := range rules {
			rule.ID = uuid.New()
			rule.DoctorID = doctorID
			rule.IsActive = true
			batchRows = append(batchRows, []interface{}{rule.ID, rule.DoctorID, rule.DayOfWeek, rule.TimeSlot, rule.IsActive})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"availability_rules"},
			[]string{"id", "doctor_id", "day_of_week", "time_slot", "is_active"},
			pgx.CopyFromRows(batchRows))
		if err != nil {
			return fmt.Errorf("inserting availability: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *repoPG) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM availability_rules WHERE doctor_id = $1`, doctorID)
	return err
}

func (r *repoPG) ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, day_of_week, time_slot, is_active, created_at
		FROM availability_rules
		WHERE doctor_id = $1 AND is_active = true
		ORDER BY day_of_week ASC, time_slot ASC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.ID, &rule.DoctorID, &rule.DayOfWeek, &rule.TimeSlot, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}
