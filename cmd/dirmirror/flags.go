package main

import (
	"github.com/spf13/pflag"

	"github.com/bamsammich/dirmirror/internal/engine"
	"github.com/bamsammich/dirmirror/internal/filter"
)

var (
	_ pflag.Value = (*filterFlag)(nil)
	_ pflag.Value = (*hashFlag)(nil)
)

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// hashFlag selects the fingerprint algorithm by name.
type hashFlag struct {
	alg *engine.Algorithm
}

func (h *hashFlag) String() string {
	if h.alg == nil {
		return ""
	}
	return h.alg.String()
}

func (*hashFlag) Type() string { return "algorithm" }

func (h *hashFlag) Set(val string) error {
	alg, err := engine.ParseAlgorithm(val)
	if err != nil {
		return err
	}
	*h.alg = alg
	return nil
}
