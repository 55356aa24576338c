package sequence

import (
	"context"
	"fmt"
	"strings"

	"taskforge-controlplane/pkg/rediskey"

	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence",
	fx.Provide(NewRedisGenerator),
)

type Generator interface {
	// NextProjectCode returns a code such as "MARV-0042". The numeric part
	// comes from one global counter, so codes never repeat across
	// organizations.
	NextProjectCode(ctx context.Context, orgName string) (string, error)
}

type RedisGenerator struct {
	rdb *redis.Client
}

type Params struct {
	fx.In

	Redis *redis.Client
}

func NewRedisGenerator(p Params) Generator {
	return &RedisGenerator{
		rdb: p.Redis,
	}
}

func (g *RedisGenerator) NextProjectCode(ctx context.Context, orgName string) (string, error) {
	seq, err := g.rdb.Incr(ctx, rediskey.BuildSequenceKey(rediskey.ProjectSeqName)).Result()
	if err != nil {
		return "", fmt.Errorf("next project sequence: %w", err)
	}
	return FormatProjectCode(orgName, seq), nil
}

// FormatProjectCode builds the code from up to four letters of the slugged
// organization name and the sequence number.
func FormatProjectCode(orgName string, seq int64) string {
	prefix := strings.ToUpper(strings.ReplaceAll(slug.Make(orgName), "-", ""))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if prefix == "" {
		prefix = "PRJ"
	}
	return fmt.Sprintf("%s-%04d", prefix, seq)
}
