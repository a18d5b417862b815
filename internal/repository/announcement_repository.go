package repository

import (
	"context"

	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
)

type AnnouncementRepository struct {
	DB *db.Postgres
}

const announcementColumns = `id, title, content, is_active, expiry_date, created_at, updated_at`

func (r AnnouncementRepository) List(ctx context.Context) ([]domain.Announcement, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+announcementColumns+` FROM announcements ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

func (r AnnouncementRepository) Create(ctx context.Context, in domain.Announcement) (*domain.Announcement, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO announcements (title, content, is_active, expiry_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING `+announcementColumns,
		in.Title, in.Content, in.IsActive, in.ExpiryDate)
	a, err := scanAnnouncement(row)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (r AnnouncementRepository) Update(ctx context.Context, in domain.Announcement) (*domain.Announcement, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE announcements SET title = $2, content = $3, is_active = $4, expiry_date = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+announcementColumns,
		in.ID, in.Title, in.Content, in.IsActive, in.ExpiryDate)
	a, err := scanAnnouncement(row)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (r AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM announcements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAnnouncement(row rowScanner) (*domain.Announcement, error) {
	var a domain.Announcement
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.IsActive, &a.ExpiryDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
