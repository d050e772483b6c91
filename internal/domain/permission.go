package domain

import "strings"

const PermissionWildcard = "*"

// PermissionSet holds the capability nodes granted to an issuer. A node
// ending in ".*" grants every node below it; "*" grants everything.
type PermissionSet map[string]struct{}

func NewPermissionSet(nodes ...string) PermissionSet {
	set := make(PermissionSet, len(nodes))
	for _, node := range nodes {
		node = normalizeNode(node)
		if node == "" {
			continue
		}
		set[node] = struct{}{}
	}
	return set
}

func (p PermissionSet) Has(node string) bool {
	node = normalizeNode(node)
	if node == "" {
		return true
	}
	if _, ok := p[PermissionWildcard]; ok {
		return true
	}
	if _, ok := p[node]; ok {
		return true
	}
	for i := len(node) - 1; i > 0; i-- {
		if node[i] != '.' {
			continue
		}
		if _, ok := p[node[:i]+".*"]; ok {
			return true
		}
	}
	return false
}

func (p PermissionSet) Nodes() []string {
	out := make([]string, 0, len(p))
	for node := range p {
		out = append(out, node)
	}
	return out
}

func normalizeNode(node string) string {
	return strings.ToLower(strings.TrimSpace(node))
}
