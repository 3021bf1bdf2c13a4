package entity

import "context"

// MessageTemplate aceita os marcadores {nome} e {imovel}.
type MessageTemplate struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Active  bool   `json:"active"`
}

type TemplateRepositoryInterface interface {
	ListActive(ctx context.Context) ([]MessageTemplate, error)
}
