package repository

import (
	"context"
	"errors"

	"taskforge-controlplane/pkg/db/option"

	"gorm.io/gorm"
)

// Repository is the generic CRUD surface shared by the services. Query structs
// follow gorm's struct-condition rules: zero-valued fields are ignored.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, id string, values any) error
	BatchCreate(ctx context.Context, entities []*T) error
	BatchUpdate(ctx context.Context, entities []*T) error
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx}
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var out []*T
	tx := option.Apply(s.db.WithContext(ctx).Model(new(T)), opts...)
	if query != nil {
		tx = tx.Where(query)
	}
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindOne returns (nil, nil) when no row matches.
func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var out T
	tx := option.Apply(s.db.WithContext(ctx).Model(new(T)), opts...)
	if query != nil {
		tx = tx.Where(query)
	}
	if err := tx.Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Create(ctx context.Context, entity *T) error {
	return s.db.WithContext(ctx).Create(entity).Error
}

func (s *store[T]) Update(ctx context.Context, id string, values any) error {
	res := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *store[T]) BatchCreate(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(entities, 100).Error
}

func (s *store[T]) BatchUpdate(ctx context.Context, entities []*T) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entities {
			if err := tx.Save(e).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	var n int64
	tx := option.Apply(s.db.WithContext(ctx).Model(new(T)), opts...)
	if query != nil {
		tx = tx.Where(query)
	}
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
