package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/grading"
	"selfreg-backend/internal/lifecycle"
	"selfreg-backend/internal/ports"
)

type RegistrationRepository struct {
	DB *db.Postgres
}

const registrationSelect = `
	SELECT r.id, r.customer_id, r.name, r.mobile_number, r.address, r.ward, r.agent_pro,
	       r.category_id, COALESCE(c.name, ''), r.panchayath_id, COALESCE(p.name, ''),
	       r.preference, r.fee_paid, r.status, r.approved_date, r.approved_by, r.created_at, r.updated_at
	FROM registrations r
	LEFT JOIN categories c ON c.id = r.category_id
	LEFT JOIN panchayaths p ON p.id = r.panchayath_id
`

func (r RegistrationRepository) Create(ctx context.Context, in ports.NewRegistration) (*domain.Registration, error) {
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO registrations
		(customer_id, name, mobile_number, address, ward, agent_pro, category_id, panchayath_id, preference, fee_paid, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'pending', now(), now())
		RETURNING id
	`, in.CustomerID, in.Name, in.MobileNumber, in.Address, in.Ward, in.AgentPro, in.CategoryID, in.PanchayathID, in.Preference, in.FeePaid).Scan(&id)
	if err != nil {
		return nil, translate(err)
	}
	return r.Get(ctx, id)
}

func (r RegistrationRepository) Get(ctx context.Context, id int64) (*domain.Registration, error) {
	row := r.DB.Pool.QueryRow(ctx, registrationSelect+` WHERE r.id=$1`, id)
	reg, err := scanRegistration(row)
	if err != nil {
		return nil, translate(err)
	}
	return reg, nil
}

// FindForStatusCheck looks a registration up by mobile number or customer id.
func (r RegistrationRepository) FindForStatusCheck(ctx context.Context, mobile, customerID string) (*domain.Registration, error) {
	row := r.DB.Pool.QueryRow(ctx, registrationSelect+`
		WHERE ($1 <> '' AND r.mobile_number = $1) OR ($2 <> '' AND upper(r.customer_id) = upper($2))
		ORDER BY r.created_at DESC
		LIMIT 1
	`, mobile, customerID)
	reg, err := scanRegistration(row)
	if err != nil {
		return nil, translate(err)
	}
	return reg, nil
}

func (r RegistrationRepository) List(ctx context.Context, f ports.RegistrationFilter) ([]domain.Registration, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != nil {
		add("r.status = $%d", string(*f.Status))
	}
	if f.CategoryID != nil {
		add("r.category_id = $%d", *f.CategoryID)
	}
	if f.PanchayathID != nil {
		add("r.panchayath_id = $%d", *f.PanchayathID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add(`(r.name ILIKE $%[1]d ESCAPE '\' OR r.mobile_number ILIKE $%[1]d ESCAPE '\' OR r.customer_id ILIKE $%[1]d ESCAPE '\')`, containsPattern(s))
	}
	if f.From != nil {
		add("r.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		// inclusive end date
		add("r.created_at < $%d", f.To.AddDate(0, 0, 1))
	}
	if f.CreatedAfter != nil {
		add("r.created_at > $%d", *f.CreatedAfter)
	}

	query := registrationSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *reg)
	}
	return items, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE substring pattern that matches s literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// UpdateStatus persists a planned transition. Approval fields follow change.Approval.
func (r RegistrationRepository) UpdateStatus(ctx context.Context, id int64, change lifecycle.StatusChange) (*domain.Registration, error) {
	var out int64
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE registrations SET
			status = $2,
			updated_at = $3,
			approved_date = CASE $4::int WHEN 1 THEN $5::timestamptz WHEN 2 THEN NULL ELSE approved_date END,
			approved_by   = CASE $4::int WHEN 1 THEN $6::text        WHEN 2 THEN NULL ELSE approved_by END
		WHERE id = $1
		RETURNING id
	`, id, string(change.Status), change.At, int(change.Approval), change.ApprovedDate, change.ApprovedBy).Scan(&out)
	if err != nil {
		return nil, translate(err)
	}
	return r.Get(ctx, id)
}

func (r RegistrationRepository) Update(ctx context.Context, id int64, in ports.RegistrationEdit, at time.Time) (*domain.Registration, error) {
	var out int64
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE registrations SET
			name = $2, address = $3, mobile_number = $4, ward = $5, agent_pro = $6, fee_paid = $7, updated_at = $8
		WHERE id = $1
		RETURNING id
	`, id, in.Name, in.Address, in.MobileNumber, in.Ward, in.AgentPro, in.FeePaid, at).Scan(&out)
	if err != nil {
		return nil, translate(err)
	}
	return r.Get(ctx, id)
}

func (r RegistrationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM registrations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r RegistrationRepository) StatusCounts(ctx context.Context) (map[domain.RegistrationStatus]int64, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT status, COUNT(*) FROM registrations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[domain.RegistrationStatus]int64{
		domain.StatusPending:  0,
		domain.StatusApproved: 0,
		domain.StatusRejected: 0,
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[domain.RegistrationStatus(status)] = n
	}
	return out, rows.Err()
}

// LocalityStats aggregates registrations per panchayath. Revenue only counts approved fees.
func (r RegistrationRepository) LocalityStats(ctx context.Context) ([]grading.LocalityStats, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT p.id, p.name, p.district,
		       COUNT(r.id) AS registrations,
		       COUNT(r.id) FILTER (WHERE r.status = 'approved') AS approved,
		       COALESCE(SUM(r.fee_paid) FILTER (WHERE r.status = 'approved'), 0) AS revenue
		FROM panchayaths p
		LEFT JOIN registrations r ON r.panchayath_id = p.id
		GROUP BY p.id, p.name, p.district
		ORDER BY p.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []grading.LocalityStats
	for rows.Next() {
		var s grading.LocalityStats
		if err := rows.Scan(&s.PanchayathID, &s.Name, &s.District, &s.Registrations, &s.Approved, &s.Revenue); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	var (
		reg          domain.Registration
		status       string
		panchayathID pgtype.Int8
	)
	if err := row.Scan(
		&reg.ID,
		&reg.CustomerID,
		&reg.Name,
		&reg.MobileNumber,
		&reg.Address,
		&reg.Ward,
		&reg.AgentPro,
		&reg.CategoryID,
		&reg.CategoryName,
		&panchayathID,
		&reg.Panchayath,
		&reg.Preference,
		&reg.FeePaid,
		&status,
		&reg.ApprovedDate,
		&reg.ApprovedBy,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if panchayathID.Valid {
		reg.PanchayathID = &panchayathID.Int64
	}
	reg.Status = domain.RegistrationStatus(status)
	return &reg, nil
}
