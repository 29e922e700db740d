package dto

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest ventana de un listado (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize acota Limit a [1, 100] (20 si no viene) y Offset a >= 0.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = defaultPageSize
	case p.Limit > maxPageSize:
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse describe la ventana devuelta. HasMore indica que existen filas después de ella.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hay_mas"`
}

// ErrorResponse cuerpo de error HTTP: código estable + mensaje legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PartialResponse se usa con 207 cuando una operación por lotes terminó con fallos parciales.
type PartialResponse struct {
	Result any    `json:"resultado"`
	Error  string `json:"error"`
}
