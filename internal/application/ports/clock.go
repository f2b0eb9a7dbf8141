package ports

import "time"

// Clock reloj de negocio inyectado, no poseído por el núcleo.
// BusinessDate calcula el día lógico de comercio (YYYY-MM-DD) según la zona
// horaria de la tienda y la hora de corte, que puede diferir de la fecha UTC.
type Clock interface {
	UtcNow() time.Time
	BusinessDate(utc time.Time) string
}
