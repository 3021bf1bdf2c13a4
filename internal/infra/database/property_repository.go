package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/xavierca1/imob-crm/internal/entity"
)

// PropertyRepository lê a tabela de anúncios. O funil nunca escreve aqui.
type PropertyRepository struct {
	DB *sql.DB
}

func NewPropertyRepository(db *sql.DB) *PropertyRepository {
	return &PropertyRepository{DB: db}
}

const propertyColumns = `id, title, price, type, city, neighborhood, images`

func (r *PropertyRepository) Get(ctx context.Context, id string) (*entity.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "imóvel", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar imóvel: %w", err)
	}
	return p, nil
}

func (r *PropertyRepository) Query(ctx context.Context, filter entity.PropertyFilter) ([]entity.Property, error) {
	query, args := buildPropertyQuery(filter)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("falha ao consultar imóveis: %w", err)
	}
	defer rows.Close()

	properties := []entity.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("falha ao ler imóvel: %w", err)
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// buildPropertyQuery monta o SELECT parametrizado para o filtro.
func buildPropertyQuery(filter entity.PropertyFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.City != "" {
		where = append(where, "city = "+arg(filter.City))
	}
	if filter.Type != "" {
		where = append(where, "type = "+arg(string(filter.Type)))
	}
	if filter.MinPrice > 0 {
		where = append(where, "price >= "+arg(filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		where = append(where, "price <= "+arg(filter.MaxPrice))
	}
	if filter.ExcludeID != "" {
		where = append(where, "id <> "+arg(filter.ExcludeID))
	}

	var b strings.Builder
	b.WriteString("SELECT " + propertyColumns + " FROM properties")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if filter.NearPrice > 0 {
		b.WriteString(" ORDER BY ABS(price - " + arg(filter.NearPrice) + "), id")
	} else {
		b.WriteString(" ORDER BY id")
	}
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}
	return b.String(), args
}

func scanProperty(row rowScanner) (*entity.Property, error) {
	var (
		p            entity.Property
		neighborhood sql.NullString
		images       pq.StringArray
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Type, &p.Location.City, &neighborhood, &images); err != nil {
		return nil, err
	}
	p.Location.Neighborhood = neighborhood.String
	p.Images = []string(images)
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}
