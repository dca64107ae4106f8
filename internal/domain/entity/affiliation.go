package entity

// CompanyAffiliation vincula una identidad con una empresa y una etiqueta de
// rol interna (cruda). La etiqueta se resuelve a un CanonicalRole al refrescar
// la sesión; aquí se conserva tal como la entrega el backend.
type CompanyAffiliation struct {
	ID               string
	CompanyID        string
	Company          Company
	RawRole          string // etiqueta interna, actual o histórica (ej. "Supervisor de Carga")
	FullNameOverride string
	Active           bool
}
