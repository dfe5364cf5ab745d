// Package uid provides identifier generators for entities and correlation ids.
package uid

import (
	"crypto/sha256"
	"encoding/binary"
	"os"

	"github.com/bwmarrin/snowflake"
)

// NumberID generates distributed-safe numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// Snowflake is a NumberID implementation backed by bwmarrin/snowflake.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a Snowflake generator whose node id is derived from the
// host identity, keeping ids unique across replicas without coordination.
func NewSnowflake() (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID())
	if err != nil {
		return nil, err
	}
	return &Snowflake{node: node}, nil
}

// Generate returns a new snowflake id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func nodeID() int64 {
	src := ""
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		src = string(b)
	}
	if src == "" {
		if h, err := os.Hostname(); err == nil {
			src = h
		}
	}

	sum := sha256.Sum256([]byte(src))
	// snowflake node ids are 10 bits
	return int64(binary.BigEndian.Uint16(sum[:2]) % 1024)
}
