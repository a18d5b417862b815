package repository

import "context"

// SeedDefaults inserts the panchayaths of district. Existing rows are skipped.
func (r PanchayathRepository) SeedDefaults(ctx context.Context, district string, names []string) (int64, error) {
	var inserted int64
	for _, name := range names {
		tag, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO panchayaths (name, district, created_at, updated_at)
			VALUES ($1, $2, now(), now())
			ON CONFLICT (name, district) DO NOTHING
		`, name, district)
		if err != nil {
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// MalappuramPanchayaths is the default seed list.
var MalappuramPanchayaths = []string{
	"Kodur",
	"Pookkottur",
	"Anakkayam",
	"Morayur",
	"Ponmala",
	"Kuruva",
	"Makkaraparamba",
	"Oorakam",
	"Vengara",
	"Kannamangalam",
	"Othukkungal",
	"Edarikode",
}
