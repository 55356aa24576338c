package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taskforge-controlplane/pkg/config"
)

func TestNewNode(t *testing.T) {
	cfg := &config.Config{}
	cfg.Platform.NodeID = 3
	node, err := NewNode(cfg)
	require.NoError(t, err)
	require.NotEqual(t, node.Generate(), node.Generate())

	cfg.Platform.NodeID = 5000
	_, err = NewNode(cfg)
	require.Error(t, err)
}
