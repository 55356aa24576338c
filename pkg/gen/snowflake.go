package gen

import (
	"fmt"

	"taskforge-controlplane/pkg/config"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("snowflake", fx.Provide(NewNode))

// NewNode builds the id generator for this process. PLATFORM.NODE_ID must be
// unique per running instance.
func NewNode(cfg *config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.Platform.NodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d: %w", cfg.Platform.NodeID, err)
	}
	return node, nil
}
