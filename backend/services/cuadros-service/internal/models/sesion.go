package models

import "time"

// Sesion is the server-side navigation record of a user, one row per username.
type Sesion struct {
	Username           string    `db:"username" json:"username"`
	Pagina             string    `db:"pagina" json:"pagina"`
	CentroSeleccionado *int64    `db:"centro_seleccionado" json:"centro_seleccionado"`
	Timestamp          time.Time `db:"timestamp" json:"timestamp"`
}
