package usecase

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/xavierca1/imob-crm/internal/entity"
)

const maxMatches = 5

// MatchFilter monta a busca por comparáveis: faixa de preço de 80% a 120% (inclusiva),
// mesma cidade, mesmo tipo, excluindo o próprio imóvel.
func MatchFilter(origin entity.Property) entity.PropertyFilter {
	return entity.PropertyFilter{
		City:      origin.Location.City,
		Type:      origin.Type,
		MinPrice:  origin.Price * 8 / 10,
		MaxPrice:  origin.Price * 12 / 10,
		ExcludeID: origin.ID,
		NearPrice: origin.Price,
		Limit:     maxMatches,
	}
}

type SmartMatchService struct {
	properties entity.PropertyRepositoryInterface
	metrics    PipelineMetrics
}

func NewSmartMatchService(properties entity.PropertyRepositoryInterface, metrics PipelineMetrics) *SmartMatchService {
	return &SmartMatchService{properties: properties, metrics: metricsOrNoop(metrics)}
}

// FindMatches devolve até 5 comparáveis, o preço mais próximo primeiro e desempate por id.
// Matches são um extra: qualquer falha vira lista vazia. Imóvel sem cidade não tem comparáveis.
func (s *SmartMatchService) FindMatches(ctx context.Context, origin entity.Property) []entity.Property {
	if strings.TrimSpace(origin.Location.City) == "" {
		s.metrics.MatchesServed(0)
		return []entity.Property{}
	}
	filter := MatchFilter(origin)

	candidates, err := s.properties.Query(ctx, filter)
	if err != nil {
		log.Printf("⚠️ Smart match indisponível para o imóvel %s: %v", origin.ID, err)
		return []entity.Property{}
	}

	matches := make([]entity.Property, 0, len(candidates))
	for _, p := range candidates {
		if filter.Matches(p) {
			matches = append(matches, p)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		di := math.Abs(matches[i].Price - origin.Price)
		dj := math.Abs(matches[j].Price - origin.Price)
		if di != dj {
			return di < dj
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	s.metrics.MatchesServed(len(matches))
	return matches
}

// FindMatchesForLead resolve o imóvel de origem do lead e busca os comparáveis.
func (s *SmartMatchService) FindMatchesForLead(ctx context.Context, lead entity.Lead) []entity.Property {
	if lead.PropertyID == nil || *lead.PropertyID == "" {
		return []entity.Property{}
	}

	origin, err := s.properties.Get(ctx, *lead.PropertyID)
	if err != nil {
		if !entity.IsNotFound(err) {
			log.Printf("⚠️ Falha ao buscar imóvel de origem %s: %v", *lead.PropertyID, err)
		}
		return []entity.Property{}
	}
	return s.FindMatches(ctx, *origin)
}
