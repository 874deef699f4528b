package models

// ProvinciaTodas disables the province filter.
const ProvinciaTodas = "Todas"

// DefaultProvincias lists the filter options offered on the site list.
var DefaultProvincias = []string{"Alicante", "Valencia", "Castellón"}

// Centro is a physical site holding electrical panels.
type Centro struct {
	ID        int64  `db:"id" json:"id"`
	Nombre    string `db:"nombre" json:"nombre"`
	Provincia string `db:"provincia" json:"provincia"`
}
