package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
)

type memAnnouncements struct {
	items []domain.Announcement
}

func (m *memAnnouncements) List(context.Context) ([]domain.Announcement, error) {
	return m.items, nil
}

func (m *memAnnouncements) Create(_ context.Context, a domain.Announcement) (*domain.Announcement, error) {
	a.ID = int64(len(m.items) + 1)
	m.items = append(m.items, a)
	return &a, nil
}

func (m *memAnnouncements) Update(_ context.Context, a domain.Announcement) (*domain.Announcement, error) {
	return &a, nil
}

func (m *memAnnouncements) Delete(context.Context, int64) error { return nil }

func TestCategoryFeeRules(t *testing.T) {
	grants := newMemGrants()
	svc := CatalogService{Categories: newMemCategories(), Access: Authorizer{Grants: grants}}
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, superAdmin, domain.Category{Name: "Catering", ActualFee: 200, OfferFee: 250})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = svc.CreateCategory(ctx, superAdmin, domain.Category{Name: "Catering", ActualFee: -1, OfferFee: -1})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = svc.CreateCategory(ctx, superAdmin, domain.Category{Name: "  ", ActualFee: 10, OfferFee: 5})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	c, err := svc.CreateCategory(ctx, superAdmin, domain.Category{Name: " Catering ", ActualFee: 250, OfferFee: 200, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Catering", c.Name)

	_, err = svc.CreateCategory(ctx, userAdmin, domain.Category{Name: "Other", ActualFee: 1, OfferFee: 1})
	assert.True(t, apperr.HasCode(err, apperr.CodePermissionDenied))

	err = svc.DeleteCategory(ctx, localAdmin, c.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodePermissionDenied))
}

func TestPublicCatalogFilters(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	svc := CatalogService{
		Categories: newMemCategories(
			domain.Category{ID: 1, Name: "Open", IsActive: true},
			domain.Category{ID: 2, Name: "Closed", IsActive: false},
		),
		Announcements: &memAnnouncements{items: []domain.Announcement{
			{ID: 1, Title: "live", IsActive: true},
			{ID: 2, Title: "expired", IsActive: true, ExpiryDate: &past},
			{ID: 3, Title: "scheduled end", IsActive: true, ExpiryDate: &future},
			{ID: 4, Title: "off", IsActive: false},
		}},
		Now: func() time.Time { return now },
	}
	ctx := context.Background()

	cats, err := svc.PublicCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Open", cats[0].Name)

	anns, err := svc.PublicAnnouncements(ctx)
	require.NoError(t, err)
	var titles []string
	for _, a := range anns {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"live", "scheduled end"}, titles)
}

func TestUtilityURLValidation(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "/relative", "https://"} {
		u := domain.Utility{Name: "Portal", URL: raw}
		assert.True(t, apperr.HasCode(validateUtility(&u), apperr.CodeValidation), raw)
	}
	u := domain.Utility{Name: "Portal", URL: " https://kudumbashree.org "}
	assert.NoError(t, validateUtility(&u))
	assert.Equal(t, "https://kudumbashree.org", u.URL)
}
