package clock

import (
	"time"

	"github.com/invorya/pos-api/internal/application/ports"
)

var _ ports.Clock = (*BusinessClock)(nil)

// BusinessClock reloj de negocio: UTC para timestamps y fecha de negocio según
// la zona horaria de la tienda y la hora de corte. Con corte a las 4, una venta
// a la 01:30 local cuenta para el día de negocio anterior.
type BusinessClock struct {
	loc         *time.Location
	cutoverHour int
	nowFn       func() time.Time
}

// New construye el reloj. Si la zona horaria no resuelve, cae a UTC.
func New(timezone string, cutoverHour int) *BusinessClock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	if cutoverHour < 0 || cutoverHour > 23 {
		cutoverHour = 0
	}
	return &BusinessClock{loc: loc, cutoverHour: cutoverHour, nowFn: time.Now}
}

// NewFixed construye un reloj congelado en el instante dado (tests).
func NewFixed(now time.Time, timezone string, cutoverHour int) *BusinessClock {
	c := New(timezone, cutoverHour)
	c.nowFn = func() time.Time { return now }
	return c
}

// UtcNow devuelve el instante actual en UTC.
func (c *BusinessClock) UtcNow() time.Time {
	return c.nowFn().UTC()
}

// BusinessDate devuelve el día lógico de comercio (YYYY-MM-DD) para el instante
// UTC dado: hora local de la tienda menos la hora de corte.
func (c *BusinessClock) BusinessDate(utc time.Time) string {
	local := utc.In(c.loc)
	shifted := local.Add(-time.Duration(c.cutoverHour) * time.Hour)
	return shifted.Format("2006-01-02")
}
