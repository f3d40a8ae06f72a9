package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/metrics"
)

const (
	defaultTagIcon  = "tag"
	defaultTagColor = "#607D8B"

	allTagsKey = "all"
)

// NewTag is the input of TagCatalog.Create. Empty Icon and Color take the
// catalog defaults.
type NewTag struct {
	Name  string
	Type  core.TxType
	Icon  string
	Color string
}

// TagCatalog serves built-in and custom tags. Listings are cached until the
// next create or delete.
type TagCatalog struct {
	store TagStore
	cache cache.Cache[[]core.Tag]
}

// NewTagCatalog wraps store; a nil cache disables caching.
func NewTagCatalog(store TagStore, c cache.Cache[[]core.Tag]) *TagCatalog {
	return &TagCatalog{store: store, cache: c}
}

// ListAll returns every tag ordered by type, then id.
func (c *TagCatalog) ListAll(ctx context.Context) ([]core.Tag, error) {
	return c.cached(ctx, allTagsKey, c.store.ListTags)
}

// ListByType returns the tags of one type ordered by id.
func (c *TagCatalog) ListByType(ctx context.Context, typ core.TxType) ([]core.Tag, error) {
	if !typ.Valid() {
		return nil, &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}
	return c.cached(ctx, "type:"+string(typ), func(ctx context.Context) ([]core.Tag, error) {
		return c.store.ListTagsByType(ctx, typ)
	})
}

func (c *TagCatalog) cached(ctx context.Context, key string, load func(context.Context) ([]core.Tag, error)) ([]core.Tag, error) {
	if c.cache != nil {
		if tags, ok := c.cache.Get(key); ok {
			metrics.TagCacheLookups.WithLabelValues("hit").Inc()
			return slices.Clone(tags), nil
		}
		metrics.TagCacheLookups.WithLabelValues("miss").Inc()
	}

	tags, err := load(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list tags", "key", key, "error", err)
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(key, slices.Clone(tags))
	}
	return tags, nil
}

func (c *TagCatalog) Get(ctx context.Context, id int64) (core.Tag, error) {
	return c.store.GetTag(ctx, id)
}

// Resolve turns a weak tag reference into a TagRef. A nil or dangling id
// yields core.Missing; only store failures are errors.
func (c *TagCatalog) Resolve(ctx context.Context, id *int64) (core.TagRef, error) {
	if id == nil {
		return core.Missing, nil
	}
	t, err := c.store.GetTag(ctx, *id)
	if errors.Is(err, core.ErrNotFound) {
		return core.Missing, nil
	}
	if err != nil {
		return core.Missing, err
	}
	return core.Resolved(t), nil
}

// Create adds a custom tag.
func (c *TagCatalog) Create(ctx context.Context, in NewTag) (core.Tag, error) {
	t := core.Tag{
		Name:     strings.TrimSpace(in.Name),
		Type:     in.Type,
		Icon:     strings.TrimSpace(in.Icon),
		Color:    strings.TrimSpace(in.Color),
		IsCustom: true,
	}
	if t.Icon == "" {
		t.Icon = defaultTagIcon
	}
	if t.Color == "" {
		t.Color = defaultTagColor
	}

	if err := t.Validate(); err != nil {
		metrics.LedgerOperations.WithLabelValues("tag_create", "invalid").Inc()
		return core.Tag{}, err
	}

	created, err := c.store.CreateTag(ctx, t)
	metrics.LedgerOperations.WithLabelValues("tag_create", metrics.Result(err, nil)).Inc()
	if err != nil {
		return core.Tag{}, err
	}
	c.invalidate()
	return created, nil
}

// Delete removes a custom tag. Built-in tags and unknown ids are ignored.
// Transactions keep their now-dangling tag id.
func (c *TagCatalog) Delete(ctx context.Context, id int64) error {
	deleted, err := c.store.DeleteCustomTag(ctx, id)
	metrics.LedgerOperations.WithLabelValues("tag_delete", metrics.Result(err, nil)).Inc()
	if err != nil {
		return err
	}
	if deleted {
		c.invalidate()
	} else {
		slog.DebugContext(ctx, "Tag delete ignored", "id", id)
	}
	return nil
}

func (c *TagCatalog) invalidate() {
	if c.cache != nil {
		c.cache.Purge()
	}
}
