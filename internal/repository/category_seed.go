package repository

import "context"

// SeedDefaults inserts the starter categories. Existing names are left untouched.
func (r CategoryRepository) SeedDefaults(ctx context.Context) (int64, error) {
	defaults := []struct {
		name      string
		actualFee int64
		offerFee  int64
	}{
		{"Tailoring", 500, 300},
		{"Catering", 500, 300},
		{"Handicrafts", 300, 200},
		{"Agriculture", 0, 0},
		{"Animal Husbandry", 0, 0},
	}
	var inserted int64
	for _, c := range defaults {
		tag, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO categories (name, actual_fee, offer_fee, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, TRUE, now(), now())
			ON CONFLICT (name) DO NOTHING
		`, c.name, c.actualFee, c.offerFee)
		if err != nil {
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}
