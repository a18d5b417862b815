package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ports"
)

// CatalogService manages the reference data shown on the public portal:
// categories, panchayaths, announcements and utility links.
type CatalogService struct {
	Categories    ports.CategoryStore
	Panchayaths   ports.PanchayathStore
	Announcements ports.AnnouncementStore
	Utilities     ports.UtilityStore
	Access        Authorizer
	Activity      ActivityRecorder
	Now           func() time.Time
}

func (s CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Public reads.

func (s CatalogService) PublicCategories(ctx context.Context) ([]domain.Category, error) {
	items, err := s.Categories.List(ctx, true)
	if err != nil {
		return nil, apperr.Upstream(err, "list categories")
	}
	return items, nil
}

func (s CatalogService) PublicPanchayaths(ctx context.Context) ([]domain.Panchayath, error) {
	items, err := s.Panchayaths.List(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "list panchayaths")
	}
	return items, nil
}

// PublicAnnouncements returns active announcements that have not expired.
func (s CatalogService) PublicAnnouncements(ctx context.Context) ([]domain.Announcement, error) {
	items, err := s.Announcements.List(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "list announcements")
	}
	now := s.now()
	out := make([]domain.Announcement, 0, len(items))
	for _, a := range items {
		if a.Visible(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s CatalogService) PublicUtilities(ctx context.Context) ([]domain.Utility, error) {
	items, err := s.Utilities.List(ctx, true)
	if err != nil {
		return nil, apperr.Upstream(err, "list utilities")
	}
	return items, nil
}

// Categories

func (s CatalogService) ListCategories(ctx context.Context, actor domain.Actor) ([]domain.Category, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleCategories, domain.PermRead); err != nil {
		return nil, err
	}
	items, err := s.Categories.List(ctx, false)
	if err != nil {
		return nil, apperr.Upstream(err, "list categories")
	}
	return items, nil
}

func validateCategory(c *domain.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.Validation("category name is required")
	}
	if c.ActualFee < 0 || c.OfferFee < 0 {
		return apperr.Validation("fees cannot be negative")
	}
	if c.OfferFee > c.ActualFee {
		return apperr.Validation("offer fee cannot exceed actual fee")
	}
	c.Description = trimmedOrNil(c.Description)
	c.PopupWarning = trimmedOrNil(c.PopupWarning)
	c.ImageURL = trimmedOrNil(c.ImageURL)
	c.QRImageURL = trimmedOrNil(c.QRImageURL)
	return nil
}

func (s CatalogService) CreateCategory(ctx context.Context, actor domain.Actor, c domain.Category) (*domain.Category, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleCategories, domain.PermWrite); err != nil {
		return nil, err
	}
	if err := validateCategory(&c); err != nil {
		return nil, err
	}
	out, err := s.Categories.Create(ctx, c)
	if err != nil {
		return nil, translateStoreErr(err, "create category")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Category created", "%s created category %s", actorName(actor), out.Name)
	return out, nil
}

// UpdateCategory changes a category. Fee changes apply to future submissions only.
func (s CatalogService) UpdateCategory(ctx context.Context, actor domain.Actor, c domain.Category) (*domain.Category, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleCategories, domain.PermWrite); err != nil {
		return nil, err
	}
	if err := validateCategory(&c); err != nil {
		return nil, err
	}
	out, err := s.Categories.Update(ctx, c)
	if err != nil {
		return nil, translateStoreErr(err, "update category")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Category updated", "%s updated category %s", actorName(actor), out.Name)
	return out, nil
}

func (s CatalogService) DeleteCategory(ctx context.Context, actor domain.Actor, id int64) error {
	if err := s.Access.Require(ctx, actor, domain.ModuleCategories, domain.PermDelete); err != nil {
		return err
	}
	if err := s.Categories.Delete(ctx, id); err != nil {
		return translateStoreErr(err, "delete category")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogWarning, "Category deleted", "%s deleted category %d", actorName(actor), id)
	return nil
}

// Panchayaths

func (s CatalogService) ListPanchayaths(ctx context.Context, actor domain.Actor) ([]domain.Panchayath, error) {
	if err := s.Access.Require(ctx, actor, domain.ModulePanchayaths, domain.PermRead); err != nil {
		return nil, err
	}
	return s.PublicPanchayaths(ctx)
}

func validatePanchayath(p *domain.Panchayath) error {
	p.Name = strings.TrimSpace(p.Name)
	p.District = strings.TrimSpace(p.District)
	if p.Name == "" || p.District == "" {
		return apperr.Validation("panchayath name and district are required")
	}
	return nil
}

func (s CatalogService) CreatePanchayath(ctx context.Context, actor domain.Actor, p domain.Panchayath) (*domain.Panchayath, error) {
	if err := s.Access.Require(ctx, actor, domain.ModulePanchayaths, domain.PermWrite); err != nil {
		return nil, err
	}
	if err := validatePanchayath(&p); err != nil {
		return nil, err
	}
	out, err := s.Panchayaths.Create(ctx, p)
	if err != nil {
		return nil, translateStoreErr(err, "create panchayath")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Panchayath created", "%s created panchayath %s", actorName(actor), out.Name)
	return out, nil
}

func (s CatalogService) UpdatePanchayath(ctx context.Context, actor domain.Actor, p domain.Panchayath) (*domain.Panchayath, error) {
	if err := s.Access.Require(ctx, actor, domain.ModulePanchayaths, domain.PermWrite); err != nil {
		return nil, err
	}
	if err := validatePanchayath(&p); err != nil {
		return nil, err
	}
	out, err := s.Panchayaths.Update(ctx, p)
	if err != nil {
		return nil, translateStoreErr(err, "update panchayath")
	}
	return out, nil
}

func (s CatalogService) DeletePanchayath(ctx context.Context, actor domain.Actor, id int64) error {
	if err := s.Access.Require(ctx, actor, domain.ModulePanchayaths, domain.PermDelete); err != nil {
		return err
	}
	if err := s.Panchayaths.Delete(ctx, id); err != nil {
		return translateStoreErr(err, "delete panchayath")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogWarning, "Panchayath deleted", "%s deleted panchayath %d", actorName(actor), id)
	return nil
}

// Announcements

func (s CatalogService) ListAnnouncements(ctx context.Context, actor domain.Actor) ([]domain.Announcement, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAnnouncements, domain.PermRead); err != nil {
		return nil, err
	}
	items, err := s.Announcements.List(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "list announcements")
	}
	return items, nil
}

func validateAnnouncement(a *domain.Announcement) error {
	a.Title = strings.TrimSpace(a.Title)
	a.Content = strings.TrimSpace(a.Content)
	if a.Title == "" || a.Content == "" {
		return apperr.Validation("announcement title and content are required")
	}
	return nil
}

func (s CatalogService) CreateAnnouncement(ctx context.Context, actor domain.Actor, a domain.Announcement) (*domain.Announcement, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAnnouncements, domain.PermWrite); err != nil {
		return nil, err
	}
	if err := validateAnnouncement(&a); err != nil {
		return nil, err
	}
	out, err := s.Announcements.Create(ctx, a)
	if err != nil {
		return nil, translateStoreErr(err, "create announcement")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Announcement created", "%s posted %q", actorName(actor), out.Title)
	return out, nil
}

func (s CatalogService) UpdateAnnouncement(ctx context.Context, actor domain.Actor, a domain.Announcement) (*domain.Announcement, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAnnouncements, domain.PermWrite); err != nil {
		return nil, err
	}
	if err := validateAnnouncement(&a); err != nil {
		return nil, err
	}
	out, err := s.Announcements.Update(ctx, a)
	if err != nil {
		return nil, translateStoreErr(err, "update announcement")
	}
	return out, nil
}

func (s CatalogService) DeleteAnnouncement(ctx context.Context, actor domain.Actor, id int64) error {
	if err := s.Access.Require(ctx, actor, domain.ModuleAnnouncements, domain.PermDelete); err != nil {
		return err
	}
	if err := s.Announcements.Delete(ctx, id); err != nil {
		return translateStoreErr(err, "delete announcement")
	}
	return nil
}

// Utilities

func (s CatalogService) ListUtilities(ctx context.Context, actor domain.Actor) ([]domain.Utility, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleUtilities, domain.PermRead); err != nil {
		return nil, err
	}
	items, err := s.Utilities.List(ctx, false)
	if err != nil {
		return nil, apperr.Upstream(err, "list utilities")
	}
	return items, nil
}

func validateUtility(u *domain.Utility) error {
	u.Name = strings.TrimSpace(u.Name)
	u.URL = strings.TrimSpace(u.URL)
	u.Description = strings.TrimSpace(u.Description)
	if u.Name == "" {
		return apperr.Validation("utility name is required")
	}
	parsed, err := url.Parse(u.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return apperr.Validation("utility url must be an absolute http(s) url")
	}
	return nil
}

func (s CatalogService) CreateUtility(ctx context.Context, actor domain.Actor, u domain.Utility) (*domain.Utility, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleUtilities, domain.PermWrite); err != nil {
		return nil, err
	}
	if err := validateUtility(&u); err != nil {
		return nil, err
	}
	out, err := s.Utilities.Create(ctx, u)
	if err != nil {
		return nil, translateStoreErr(err, "create utility")
	}
	return out, nil
}

func (s CatalogService) UpdateUtility(ctx context.Context, actor domain.Actor, u domain.Utility) (*domain.Utility, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleUtilities, domain.PermWrite); err != nil {
		return nil, err
	}
	if err := validateUtility(&u); err != nil {
		return nil, err
	}
	out, err := s.Utilities.Update(ctx, u)
	if err != nil {
		return nil, translateStoreErr(err, "update utility")
	}
	return out, nil
}

func (s CatalogService) DeleteUtility(ctx context.Context, actor domain.Actor, id int64) error {
	if err := s.Access.Require(ctx, actor, domain.ModuleUtilities, domain.PermDelete); err != nil {
		return err
	}
	if err := s.Utilities.Delete(ctx, id); err != nil {
		return translateStoreErr(err, "delete utility")
	}
	return nil
}
