package redis

import "strings"

const defaultPrefix = "millionaire"

// keyspace builds namespaced keys, e.g. millionaire:game:<id>.
type keyspace string

func newKeyspace(prefix string) keyspace {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return keyspace(prefix)
}

func (k keyspace) key(parts ...string) string {
	return string(k) + ":" + strings.Join(parts, ":")
}
