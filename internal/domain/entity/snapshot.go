package entity

import "time"

// SessionSnapshot estado completo resuelto de identidad + roles + empresa en
// un instante. Las afiliaciones se reemplazan en bloque en cada refresh, nunca
// se mutan en sitio. PrimaryRole siempre es derivable de Roles por precedencia.
type SessionSnapshot struct {
	Identity           Identity             `json:"identity"`
	Affiliations       []CompanyAffiliation `json:"affiliations"`
	Roles              []CanonicalRole      `json:"roles"`
	PrimaryRole        CanonicalRole        `json:"primary_role"`
	PrimaryCompanyID   *string              `json:"primary_company_id"`
	PrimaryCompanyKind CompanyKind          `json:"primary_company_kind"`
	LastFetchedAt      time.Time            `json:"last_fetched_at"`
}

// IsEmpty indica si el snapshot no contiene identidad resuelta.
func (s SessionSnapshot) IsEmpty() bool {
	return s.Identity.ID == ""
}

// HasRole chequeo puro de pertenencia; sin I/O.
func (s SessionSnapshot) HasRole(role CanonicalRole) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole verdadero si el snapshot tiene al menos uno de los roles dados.
func (s SessionSnapshot) HasAnyRole(roles ...CanonicalRole) bool {
	for _, r := range roles {
		if s.HasRole(r) {
			return true
		}
	}
	return false
}

// Clone copia profunda de los slices para que el llamador nunca comparta
// memoria con el snapshot cacheado.
func (s SessionSnapshot) Clone() SessionSnapshot {
	out := s
	if s.Affiliations != nil {
		out.Affiliations = append([]CompanyAffiliation(nil), s.Affiliations...)
	}
	if s.Roles != nil {
		out.Roles = append([]CanonicalRole(nil), s.Roles...)
	}
	if s.PrimaryCompanyID != nil {
		id := *s.PrimaryCompanyID
		out.PrimaryCompanyID = &id
	}
	return out
}
