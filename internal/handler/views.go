package handler

import (
	"time"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/lifecycle"
)

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

// registrationView renders a registration. Pending registrations also carry
// their aging fields.
func registrationView(reg domain.Registration, now time.Time) map[string]any {
	view := map[string]any{
		"id":           reg.ID,
		"customerId":   reg.CustomerID,
		"name":         reg.Name,
		"mobileNumber": reg.MobileNumber,
		"address":      reg.Address,
		"ward":         reg.Ward,
		"agentPro":     reg.AgentPro,
		"categoryId":   reg.CategoryID,
		"categoryName": reg.CategoryName,
		"panchayathId": reg.PanchayathID,
		"panchayath":   reg.Panchayath,
		"preference":   reg.Preference,
		"feePaid":      reg.FeePaid,
		"status":       string(reg.Status),
		"approvedDate": formatTime(reg.ApprovedDate),
		"approvedBy":   reg.ApprovedBy,
		"createdAt":    reg.CreatedAt.Format(time.RFC3339),
		"updatedAt":    reg.UpdatedAt.Format(time.RFC3339),
	}
	if aging, ok := lifecycle.AgingOf(reg, now); ok {
		view["daysRemaining"] = aging.DaysRemaining
		view["urgency"] = string(aging.Urgency)
		view["expiresAt"] = aging.ExpiresAt.Format(time.RFC3339)
	}
	return view
}

func registrationViews(items []domain.Registration, now time.Time) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, reg := range items {
		out = append(out, registrationView(reg, now))
	}
	return out
}

// publicRegistrationView is what the registrant sees on the status page.
func publicRegistrationView(reg domain.Registration, now time.Time) map[string]any {
	view := map[string]any{
		"customerId":   reg.CustomerID,
		"name":         reg.Name,
		"categoryName": reg.CategoryName,
		"panchayath":   reg.Panchayath,
		"feePaid":      reg.FeePaid,
		"status":       string(reg.Status),
		"approvedDate": formatTime(reg.ApprovedDate),
		"createdAt":    reg.CreatedAt.Format(time.RFC3339),
	}
	if aging, ok := lifecycle.AgingOf(reg, now); ok {
		view["daysRemaining"] = aging.DaysRemaining
	}
	return view
}

func categoryView(c domain.Category) map[string]any {
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"actualFee":    c.ActualFee,
		"offerFee":     c.OfferFee,
		"isActive":     c.IsActive,
		"isFree":       c.IsFree(),
		"description":  c.Description,
		"popupWarning": c.PopupWarning,
		"imageUrl":     c.ImageURL,
		"qrImageUrl":   c.QRImageURL,
	}
}

func panchayathView(p domain.Panchayath) map[string]any {
	return map[string]any{
		"id":       p.ID,
		"name":     p.Name,
		"district": p.District,
	}
}

func announcementView(a domain.Announcement) map[string]any {
	return map[string]any{
		"id":         a.ID,
		"title":      a.Title,
		"content":    a.Content,
		"isActive":   a.IsActive,
		"expiryDate": formatTime(a.ExpiryDate),
		"createdAt":  a.CreatedAt.Format(time.RFC3339),
	}
}

func utilityView(u domain.Utility) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"name":        u.Name,
		"url":         u.URL,
		"description": u.Description,
		"isActive":    u.IsActive,
	}
}

func adminView(a domain.AdminUser) map[string]any {
	return map[string]any{
		"id":        a.ID,
		"username":  a.Username,
		"role":      string(a.Role),
		"isActive":  a.IsActive,
		"lastLogin": formatTime(a.LastLogin),
		"createdAt": a.CreatedAt.Format(time.RFC3339),
	}
}

func grantViews(grants []domain.PermissionGrant) []map[string]string {
	out := make([]map[string]string, 0, len(grants))
	for _, g := range grants {
		out = append(out, map[string]string{
			"module":     string(g.Module),
			"permission": string(g.Permission),
		})
	}
	return out
}

func mapSlice[T any](items []T, view func(T) map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, view(it))
	}
	return out
}
