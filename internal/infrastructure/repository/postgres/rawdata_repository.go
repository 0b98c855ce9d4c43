package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/footyarchive/gamelog-api/internal/domain/rawdata"
	qb "github.com/footyarchive/gamelog-api/internal/platform/querybuilder"
)

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) Upsert(ctx context.Context, item rawdata.Payload) error {
	model := rawPageModel{
		Source:      item.Source,
		EntityKey:   item.EntityKey,
		Body:        item.Body,
		PayloadHash: item.PayloadHash,
		FetchedAt:   item.FetchedAt,
	}
	if model.FetchedAt.IsZero() {
		model.FetchedAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel("raw_pages", model, `ON CONFLICT (source, entity_key)
DO UPDATE SET
    body = EXCLUDED.body,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build upsert raw page query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert raw page source=%s key=%s: %w", item.Source, item.EntityKey, err)
	}

	return nil
}

func (r *RawDataRepository) Get(ctx context.Context, source, entityKey string) (rawdata.Payload, bool, error) {
	query, args, err := qb.Select("source", "entity_key", "body", "payload_hash", "fetched_at").
		From("raw_pages").
		Where(qb.Eq("source", source), qb.Eq("entity_key", entityKey)).
		Limit(1).
		ToSQL()
	if err != nil {
		return rawdata.Payload{}, false, fmt.Errorf("build select raw page query: %w", err)
	}

	var model rawPageModel
	if err := r.db.GetContext(ctx, &model, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rawdata.Payload{}, false, nil
		}
		return rawdata.Payload{}, false, fmt.Errorf("select raw page source=%s key=%s: %w", source, entityKey, err)
	}

	return rawdata.Payload{
		Source:      model.Source,
		EntityKey:   model.EntityKey,
		Body:        model.Body,
		PayloadHash: model.PayloadHash,
		FetchedAt:   model.FetchedAt,
	}, true, nil
}

type rawPageModel struct {
	Source      string    `db:"source"`
	EntityKey   string    `db:"entity_key"`
	Body        string    `db:"body"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
