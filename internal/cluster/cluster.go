// Package cluster bounds how many source units the engine processes per
// in-memory batch.
package cluster

import (
	"fmt"

	"github.com/conduit-lang/xgen/internal/builderrors"
)

// Policy limits batch sizes. A nil *Policy means a single unbounded batch.
type Policy struct {
	// MaxUnitsPerBatch is the maximum number of source units per batch
	MaxUnitsPerBatch int `mapstructure:"max_units_per_batch" yaml:"max_units_per_batch" json:"max_units_per_batch"`

	// FlushIndex forces a full resource index flush at every batch boundary
	FlushIndex bool `mapstructure:"flush_index" yaml:"flush_index" json:"flush_index"`
}

// Validate checks the policy. A nil policy is valid.
func (p *Policy) Validate() error {
	if p == nil {
		return nil
	}
	if p.MaxUnitsPerBatch <= 0 {
		return builderrors.Configurationf("validate clustering", "max_units_per_batch must be positive, got %d", p.MaxUnitsPerBatch)
	}
	return nil
}

// Batches returns how many batches n source units are split into
func (p *Policy) Batches(n int) int {
	if n <= 0 {
		return 0
	}
	if p == nil || p.MaxUnitsPerBatch <= 0 {
		return 1
	}
	return (n + p.MaxUnitsPerBatch - 1) / p.MaxUnitsPerBatch
}

// Partition splits units into consecutive batches honoring the policy
func (p *Policy) Partition(units []string) [][]string {
	if len(units) == 0 {
		return nil
	}
	if p == nil || p.MaxUnitsPerBatch <= 0 {
		return [][]string{units}
	}
	batches := make([][]string, 0, p.Batches(len(units)))
	for start := 0; start < len(units); start += p.MaxUnitsPerBatch {
		end := min(start+p.MaxUnitsPerBatch, len(units))
		batches = append(batches, units[start:end:end])
	}
	return batches
}

// String describes the policy for logs
func (p *Policy) String() string {
	if p == nil {
		return "unbounded"
	}
	return fmt.Sprintf("max %d units per batch, flush index: %t", p.MaxUnitsPerBatch, p.FlushIndex)
}
