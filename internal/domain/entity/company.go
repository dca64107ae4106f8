package entity

// CompanyKind tipo de organización dentro de la plataforma logística.
type CompanyKind string

// Tipos de empresa válidos (deben coincidir con el CHECK de la tabla companies).
const (
	CompanyKindPlant   CompanyKind = "plant"   // planta / centro de despacho
	CompanyKindCarrier CompanyKind = "carrier" // empresa transportadora
	CompanyKindClient  CompanyKind = "client"  // cliente final
	CompanyKindAdmin   CompanyKind = "admin"   // organización administradora
	CompanyKindSystem  CompanyKind = "system"  // interna de la plataforma
)

// Company representa una organización/tenant del sistema.
type Company struct {
	ID    string
	Name  string
	Kind  CompanyKind
	TaxID string // NIT (con o sin dígito de verificación)
}
