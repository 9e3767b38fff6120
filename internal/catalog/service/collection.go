package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/pkg/repository"
)

type collection interface {
	upsert(ctx context.Context, payload json.RawMessage, genID *snowflake.Node) (domain.Record, error)
	delete(ctx context.Context, id string) (bool, error)
}

type typedCollection[T domain.Record] struct {
	store   repository.Repository[T]
	prepare func(*T) error
	setID   func(*T, string)
}

func (c *typedCollection[T]) upsert(ctx context.Context, payload json.RawMessage, genID *snowflake.Node) (domain.Record, error) {
	var record T
	if len(payload) == 0 || json.Unmarshal(payload, &record) != nil {
		return nil, domain.ErrInvalidPayload
	}

	id := strings.TrimSpace(record.GetID())
	if id == "" {
		id = genID.Generate().String()
	}
	c.setID(&record, id)

	if err := c.prepare(&record); err != nil {
		return nil, err
	}
	if err := c.store.Upsert(ctx, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (c *typedCollection[T]) delete(ctx context.Context, id string) (bool, error) {
	return c.store.Delete(ctx, id)
}
