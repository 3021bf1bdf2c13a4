package entity

import "context"

type PropertyType string

const (
	PropertyHouse      PropertyType = "house"
	PropertyApartment  PropertyType = "apartment"
	PropertyPenthouse  PropertyType = "penthouse"
	PropertyCommercial PropertyType = "commercial"
	PropertyLand       PropertyType = "land"
)

type Location struct {
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
}

// Property pertence ao módulo de anúncios; o funil só lê.
type Property struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Price    float64      `json:"price"`
	Type     PropertyType `json:"type"`
	Location Location     `json:"location"`
	Images   []string     `json:"images"`
}

// PropertyFilter descreve a busca por comparáveis. Limite zero significa sem limite.
type PropertyFilter struct {
	City      string
	Type      PropertyType
	MinPrice  float64
	MaxPrice  float64
	ExcludeID string
	// NearPrice ordena pela distância absoluta até esse preço, desempate por id.
	NearPrice float64
	Limit     int
}

// Matches reaplica o filtro em memória.
func (f PropertyFilter) Matches(p Property) bool {
	if f.City != "" && p.Location.City != f.City {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if p.Price < f.MinPrice || (f.MaxPrice > 0 && p.Price > f.MaxPrice) {
		return false
	}
	return f.ExcludeID == "" || p.ID != f.ExcludeID
}

type PropertyRepositoryInterface interface {
	Get(ctx context.Context, id string) (*Property, error)
	Query(ctx context.Context, filter PropertyFilter) ([]Property, error)
}
