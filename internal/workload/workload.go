// Package workload describes synthetic atlas-cache workloads for cmd/bench.
//
// A profile is a YAML document:
//
//	capacity_bytes: 67108864
//	keys: 200000
//	mix: {touch: 70, replace: 10, push: 15, remove: 5}
//	partitions:
//	  - name: glyphs
//	    weight: 6
//	    tile_bytes: 4096
//	  - name: images
//	    weight: 1
//	    tile_bytes: 262144
//
// Partitions are listed in eviction order: the first one is drained first.
package workload

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/lrutrack/cache"
)

// ErrInvalidProfile is wrapped by every validation failure.
var ErrInvalidProfile = errors.New("workload: invalid profile")

// Partition is one recency domain of the simulated atlas.
type Partition struct {
	Name string `yaml:"name"`
	// Weight is the relative share of operations aimed at this partition.
	Weight int `yaml:"weight"`
	// TileBytes is the cost of one entry.
	TileBytes int64 `yaml:"tile_bytes"`
}

// Mix is the relative frequency of each operation.
type Mix struct {
	Touch   int `yaml:"touch"`
	Replace int `yaml:"replace"`
	Push    int `yaml:"push"`
	Remove  int `yaml:"remove"`
}

func (m Mix) total() int { return m.Touch + m.Replace + m.Push + m.Remove }

// Profile is a complete workload description.
type Profile struct {
	CapacityBytes int64       `yaml:"capacity_bytes"`
	Keys          int         `yaml:"keys"`
	Mix           Mix         `yaml:"mix"`
	Partitions    []Partition `yaml:"partitions"`

	weightSum int
}

// Op is one generated cache operation.
type Op int

const (
	OpTouch Op = iota
	OpReplace
	OpPush
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpTouch:
		return "touch"
	case OpReplace:
		return "replace"
	case OpPush:
		return "push"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Default returns the built-in two-partition profile.
func Default() Profile {
	p := Profile{
		CapacityBytes: 64 << 20,
		Keys:          200_000,
		Mix:           Mix{Touch: 70, Replace: 10, Push: 15, Remove: 5},
		Partitions: []Partition{
			{Name: "glyphs", Weight: 6, TileBytes: 4 << 10},
			{Name: "images", Weight: 1, TileBytes: 256 << 10},
		},
	}
	if err := p.Validate(); err != nil {
		panic(err)
	}
	return p
}

// Load reads and validates a profile from a YAML file.
func Load(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a profile. Unknown fields are rejected.
func Parse(r io.Reader) (Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p Profile
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile and caches derived values.
func (p *Profile) Validate() error {
	switch {
	case len(p.Partitions) == 0:
		return fmt.Errorf("%w: no partitions", ErrInvalidProfile)
	case len(p.Partitions) > cache.MaxPartitions:
		return fmt.Errorf("%w: %d partitions, at most %d", ErrInvalidProfile, len(p.Partitions), cache.MaxPartitions)
	case p.CapacityBytes <= 0:
		return fmt.Errorf("%w: capacity_bytes must be > 0", ErrInvalidProfile)
	case p.Keys <= 0:
		return fmt.Errorf("%w: keys must be > 0", ErrInvalidProfile)
	case p.Mix.Touch < 0 || p.Mix.Replace < 0 || p.Mix.Push < 0 || p.Mix.Remove < 0:
		return fmt.Errorf("%w: negative mix weight", ErrInvalidProfile)
	case p.Mix.total() == 0:
		return fmt.Errorf("%w: empty operation mix", ErrInvalidProfile)
	}
	sum := 0
	for i, part := range p.Partitions {
		if part.Weight <= 0 {
			return fmt.Errorf("%w: partition %d (%s) weight must be > 0", ErrInvalidProfile, i, part.Name)
		}
		if part.TileBytes <= 0 {
			return fmt.Errorf("%w: partition %d (%s) tile_bytes must be > 0", ErrInvalidProfile, i, part.Name)
		}
		sum += part.Weight
	}
	p.weightSum = sum
	return nil
}

// Order returns partition ids in eviction order.
func (p *Profile) Order() []uint8 {
	out := make([]uint8, len(p.Partitions))
	for i := range out {
		out[i] = uint8(i)
	}
	return out
}

// PickPartition draws a partition id according to the weights.
// p must have been validated.
func (p *Profile) PickPartition(r *rand.Rand) uint8 {
	n := r.Intn(p.weightSum)
	for i, part := range p.Partitions {
		if n < part.Weight {
			return uint8(i)
		}
		n -= part.Weight
	}
	return uint8(len(p.Partitions) - 1)
}

// PickOp draws an operation according to the mix.
func (p *Profile) PickOp(r *rand.Rand) Op {
	n := r.Intn(p.Mix.total())
	for _, c := range []struct {
		op Op
		w  int
	}{
		{OpTouch, p.Mix.Touch},
		{OpReplace, p.Mix.Replace},
		{OpPush, p.Mix.Push},
		{OpRemove, p.Mix.Remove},
	} {
		if n < c.w {
			return c.op
		}
		n -= c.w
	}
	return OpPush
}
