package option

import (
	"strings"

	"taskforge-controlplane/pkg/db/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption mutates a query before it is executed by a repository.
type QueryOption func(*gorm.DB) *gorm.DB

type Operator string

const (
	EQ  Operator = "="
	NEQ Operator = "<>"
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
	IN  Operator = "IN"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

func Apply(tx *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt != nil {
			tx = opt(tx)
		}
	}
	return tx
}

// ApplyPagination fetches one row past the limit so pagination.BuildPageInfo
// can tell whether another page exists.
func ApplyPagination(p pagination.Pagination) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		p = p.Normalize()
		return tx.Limit(p.Limit + 1).Offset(p.Offset)
	}
}

// ApplyOperator adds a WHERE condition. Field names are quoted so they never
// reach the query as raw user input.
func ApplyOperator(c Condition) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		col := clause.Column{Name: c.Field}
		switch c.Operator {
		case IN:
			return tx.Where(clause.IN{Column: col, Values: toValues(c.Value)})
		case NEQ:
			return tx.Where(clause.Neq{Column: col, Value: c.Value})
		case GT:
			return tx.Where(clause.Gt{Column: col, Value: c.Value})
		case GTE:
			return tx.Where(clause.Gte{Column: col, Value: c.Value})
		case LT:
			return tx.Where(clause.Lt{Column: col, Value: c.Value})
		case LTE:
			return tx.Where(clause.Lte{Column: col, Value: c.Value})
		default:
			return tx.Where(clause.Eq{Column: col, Value: c.Value})
		}
	}
}

func WithSortBy(s QuerySortBy) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		order := strings.ToLower(s.OrderBy)
		if order != "asc" {
			order = "desc"
		}

		field := s.SortBy
		if field == "" {
			field = "created_at"
		}
		if len(s.Allow) > 0 && !s.Allow[field] {
			return tx
		}

		return tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: field},
			Desc:   order == "desc",
		})
	}
}

func WithPreload(relation string, args ...any) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Preload(relation, args...)
	}
}

func LockingUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func WithLockingUpdate() QueryOption {
	return LockingUpdate
}

func toValues(v any) []any {
	switch vs := v.(type) {
	case []any:
		return vs
	case []string:
		out := make([]any, 0, len(vs))
		for _, s := range vs {
			out = append(out, s)
		}
		return out
	default:
		return []any{v}
	}
}
