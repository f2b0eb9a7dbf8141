package domain

// Scope identifica el tenant y la tienda de toda operación del núcleo POS.
// Se pasa explícito en cada llamada; el núcleo no usa contexto ambiental.
// Una lectura fuera del tenant del caller se responde como ErrNotFound
// (no se confirma la existencia del recurso ajeno).
type Scope struct {
	TenantID string
	StoreID  string
}

// Actor identifica al usuario que ejecuta una operación mutante.
type Actor struct {
	UserID string
	Role   string
}
