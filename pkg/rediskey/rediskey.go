package rediskey

import "fmt"

const (
	SequencePrefix = "seq"
	ProjectSeqName = "project"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildSequenceKey returns "seq:{name}"
func BuildSequenceKey(name string) string {
	return NamespaceKey(SequencePrefix, name)
}
