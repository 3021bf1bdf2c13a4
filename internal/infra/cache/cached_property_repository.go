package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// KeyValueStore é o pedaço do Redis que o cache de comparáveis usa.
type KeyValueStore interface {
	GetKey(ctx context.Context, key string) (string, bool, error)
	SetKey(ctx context.Context, key string, value string) error
}

// CachedPropertyRepository guarda o resultado das buscas de comparáveis.
// Get sempre vai ao banco; erro de cache nunca derruba a leitura.
type CachedPropertyRepository struct {
	inner entity.PropertyRepositoryInterface
	store KeyValueStore
}

func NewCachedPropertyRepository(inner entity.PropertyRepositoryInterface, store KeyValueStore) *CachedPropertyRepository {
	return &CachedPropertyRepository{inner: inner, store: store}
}

func (r *CachedPropertyRepository) Get(ctx context.Context, id string) (*entity.Property, error) {
	return r.inner.Get(ctx, id)
}

func (r *CachedPropertyRepository) Query(ctx context.Context, filter entity.PropertyFilter) ([]entity.Property, error) {
	if r.store == nil {
		return r.inner.Query(ctx, filter)
	}

	key := queryCacheKey(filter)
	cached, found, err := r.store.GetKey(ctx, key)
	if err != nil {
		log.Printf("⚠️ Cache de imóveis indisponível (%s): %v", key, err)
	}
	if found && err == nil {
		var properties []entity.Property
		if err := json.Unmarshal([]byte(cached), &properties); err == nil {
			return properties, nil
		}
		log.Printf("⚠️ Entrada de cache corrompida em %s, indo ao banco", key)
	}

	properties, err := r.inner.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	snapshot := append([]entity.Property(nil), properties...)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		r.fill(ctx, key, snapshot)
	}()

	return properties, nil
}

func (r *CachedPropertyRepository) fill(ctx context.Context, key string, properties []entity.Property) {
	data, err := json.Marshal(properties)
	if err != nil {
		log.Printf("⚠️ Falha ao serializar comparáveis para %s: %v", key, err)
		return
	}
	if err := r.store.SetKey(ctx, key, string(data)); err != nil {
		log.Printf("⚠️ Falha ao gravar cache %s: %v", key, err)
	}
}

func queryCacheKey(f entity.PropertyFilter) string {
	raw := fmt.Sprintf("city:%s:type:%s:min:%.2f:max:%.2f:ex:%s:near:%.2f:limit:%d",
		f.City, f.Type, f.MinPrice, f.MaxPrice, f.ExcludeID, f.NearPrice, f.Limit)
	return fmt.Sprintf("crm:matches:%x", md5.Sum([]byte(raw)))
}
