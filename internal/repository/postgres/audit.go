package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, changes, metadata, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	log.CreatedAt = time.Now()

	if err := r.db.QueryRowContext(ctx, query,
		log.UserID,
		log.Action,
		log.EntityType,
		log.EntityID,
		log.Changes,
		log.Metadata,
		log.IPAddress,
		log.CreatedAt,
	).Scan(&log.ID); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters map[string]interface{}) ([]*model.AuditLog, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id, changes, metadata, ip_address, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}
	i := 1

	if userID, ok := filters["user_id"]; ok {
		query += fmt.Sprintf(" AND user_id = $%d", i)
		args = append(args, userID)
		i++
	}
	if entityType, ok := filters["entity_type"]; ok {
		query += fmt.Sprintf(" AND entity_type = $%d", i)
		args = append(args, entityType)
		i++
	}
	if action, ok := filters["action"]; ok {
		query += fmt.Sprintf(" AND action = $%d", i)
		args = append(args, action)
		i++
	}

	query += " ORDER BY created_at DESC LIMIT 500"

	var logs []*model.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM audit_logs WHERE created_at < $1`, before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
