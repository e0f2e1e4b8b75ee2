package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey is the key for a cached API response.
	HTTPKey(namespace, key string) string

	// ViewKey is the key for a rendered pipeline view.
	ViewKey(pipeline, provider string, opts ViewKeyOpts) string
}

// ViewKeyOpts holds the options that change a rendered view.
type ViewKeyOpts struct {
	Format         string `json:"format"`
	Engine         string `json:"engine,omitempty"`
	ClusterRegions bool   `json:"cluster_regions,omitempty"`
	UnionServices  bool   `json:"union_services,omitempty"`
	Detailed       bool   `json:"detailed,omitempty"`
	Positions      bool   `json:"positions,omitempty"`
	DataHash       string `json:"data_hash,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ViewKey returns "view:<sha256>" over the pipeline, provider and options.
func (DefaultKeyer) ViewKey(pipeline, provider string, opts ViewKeyOpts) string {
	data, _ := json.Marshal([]any{pipeline, provider, opts})
	return "view:" + Hash(data)
}

// Namespace prefixes every key of a [Keyer]. Deployments sharing one Redis
// set the cache.prefix config key to keep their entries apart.
type Namespace struct {
	Keyer
	Prefix string
}

// NewNamespace returns inner with keys prefixed by prefix. An empty prefix
// returns inner unchanged; a nil inner means [DefaultKeyer].
func NewNamespace(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	if prefix == "" {
		return inner
	}
	return Namespace{Keyer: inner, Prefix: prefix}
}

func (n Namespace) HTTPKey(namespace, key string) string {
	return n.Prefix + n.Keyer.HTTPKey(namespace, key)
}

func (n Namespace) ViewKey(pipeline, provider string, opts ViewKeyOpts) string {
	return n.Prefix + n.Keyer.ViewKey(pipeline, provider, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
