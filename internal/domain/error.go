package domain

// Response é o envelope padronizado de todas as respostas da API.
// Sucesso: {success: true, data} ou {success: true, message}.
// Erro: {success: false, message, error}.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}
