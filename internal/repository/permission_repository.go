package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
)

type PermissionRepository struct {
	DB *db.Postgres
}

// ListGrants returns the stored grants of an admin. Rows naming a module or
// permission type outside the known set are skipped.
func (r PermissionRepository) ListGrants(ctx context.Context, adminID int64) ([]domain.PermissionGrant, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT module_name, permission_type
		FROM admin_permissions
		WHERE admin_id = $1
		ORDER BY module_name, permission_type
	`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grants []domain.PermissionGrant
	for rows.Next() {
		var moduleName, permType string
		if err := rows.Scan(&moduleName, &permType); err != nil {
			return nil, err
		}
		module, err := domain.ParseModule(moduleName)
		if err != nil {
			continue
		}
		perm, err := domain.ParsePermissionType(permType)
		if err != nil {
			continue
		}
		grants = append(grants, domain.PermissionGrant{AdminID: adminID, Module: module, Permission: perm})
	}
	return grants, rows.Err()
}

// ReplaceGrants deletes the admin's grants and inserts the new set atomically.
func (r PermissionRepository) ReplaceGrants(ctx context.Context, adminID int64, grants []domain.PermissionGrant) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM admin_permissions WHERE admin_id=$1`, adminID); err != nil {
		return fmt.Errorf("clear grants: %w", err)
	}
	if len(grants) > 0 {
		batch := &pgx.Batch{}
		for _, g := range grants {
			batch.Queue(`
				INSERT INTO admin_permissions (admin_id, module_name, permission_type)
				VALUES ($1,$2,$3)
				ON CONFLICT DO NOTHING
			`, adminID, string(g.Module), string(g.Permission))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert grants: %w", translate(err))
		}
	}
	return tx.Commit(ctx)
}
