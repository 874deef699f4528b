package models

import (
	"fmt"
	"time"
)

// Tipo is the panel kind.
type Tipo string

const (
	TipoCGBT Tipo = "CGBT"
	TipoCS   Tipo = "CS"
	TipoCT   Tipo = "CT"
	TipoCC   Tipo = "CC"
)

// Tipos lists every accepted panel kind in display order.
var Tipos = []Tipo{TipoCGBT, TipoCS, TipoCT, TipoCC}

// ParseTipo validates a raw panel kind.
func ParseTipo(raw string) (Tipo, error) {
	for _, t := range Tipos {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("models: unknown tipo %q", raw)
}

// Panel number bounds, inclusive.
const (
	NumeroMin = 0
	NumeroMax = 100
)

// Cuadro is an electrical distribution panel within a Centro.
type Cuadro struct {
	ID                     int64      `db:"id" json:"id"`
	CentroID               int64      `db:"centro_id" json:"centro_id"`
	Tipo                   Tipo       `db:"tipo" json:"tipo"`
	Nombre                 string     `db:"nombre" json:"nombre"`
	Numero                 int        `db:"numero" json:"numero"`
	TierraOhmnios          *float64   `db:"tierra_ohmnios" json:"tierra_ohmnios"`
	AislamientoMegaohmnios *float64   `db:"aislamiento_megaohmnios" json:"aislamiento_megaohmnios"`
	UltimoUsuario          *string    `db:"ultimo_usuario" json:"ultimo_usuario"`
	UltimaModificacion     *time.Time `db:"ultima_modificacion" json:"ultima_modificacion"`
}

// Tierra returns the grounding measurement or 0 when unset.
func (c Cuadro) Tierra() float64 {
	if c.TierraOhmnios == nil {
		return 0
	}
	return *c.TierraOhmnios
}

// Aislamiento returns the insulation measurement or 0 when unset.
func (c Cuadro) Aislamiento() float64 {
	if c.AislamientoMegaohmnios == nil {
		return 0
	}
	return *c.AislamientoMegaohmnios
}

// Stamp identifies who wrote a record and when.
type Stamp struct {
	Usuario string
	At      time.Time
}
