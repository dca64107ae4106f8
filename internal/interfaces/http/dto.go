package http

import (
	"time"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// ErrorResponse formato uniforme de error de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AffiliationView afiliación tal como la ve el consumidor de la API.
type AffiliationView struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	CompanyKind string `json:"company_kind"`
	RawRole     string `json:"raw_role"`
}

// SessionResponse vista del snapshot resuelto más el estado de carga/error.
// error viene como texto: los fallos de resolución nunca rompen esta vista.
type SessionResponse struct {
	UserID             string            `json:"user_id"`
	Email              string            `json:"email"`
	DisplayName        string            `json:"display_name"`
	Roles              []string          `json:"roles"`
	PrimaryRole        string            `json:"primary_role"`
	PrimaryCompanyID   *string           `json:"primary_company_id"`
	PrimaryCompanyKind string            `json:"primary_company_kind"`
	Affiliations       []AffiliationView `json:"affiliations"`
	LastFetchedAt      *time.Time        `json:"last_fetched_at"`
	Loading            bool              `json:"loading"`
	Error              string            `json:"error,omitempty"`
}

// TokenRequest cuerpo de POST /api/session/token.
type TokenRequest struct {
	AccessToken string `json:"access_token"`
}

func toSessionResponse(snap entity.SessionSnapshot, loading bool, err error) SessionResponse {
	roles := make([]string, 0, len(snap.Roles))
	for _, r := range snap.Roles {
		roles = append(roles, string(r))
	}
	affs := make([]AffiliationView, 0, len(snap.Affiliations))
	for _, a := range snap.Affiliations {
		affs = append(affs, AffiliationView{
			ID:          a.ID,
			CompanyID:   a.CompanyID,
			CompanyName: a.Company.Name,
			CompanyKind: string(a.Company.Kind),
			RawRole:     a.RawRole,
		})
	}
	out := SessionResponse{
		UserID:             snap.Identity.ID,
		Email:              snap.Identity.Email,
		DisplayName:        snap.Identity.DisplayName,
		Roles:              roles,
		PrimaryRole:        string(snap.PrimaryRole),
		PrimaryCompanyID:   snap.PrimaryCompanyID,
		PrimaryCompanyKind: string(snap.PrimaryCompanyKind),
		Affiliations:       affs,
		Loading:            loading,
	}
	if !snap.LastFetchedAt.IsZero() {
		t := snap.LastFetchedAt
		out.LastFetchedAt = &t
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
