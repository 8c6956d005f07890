package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/strobe-audio/strobe"
	"github.com/strobe-audio/strobe/descriptors"
)

// profile is the YAML extraction configuration: which descriptor sets to
// run and with what options.
type profile struct {
	Workers   int          `yaml:"workers"`
	ChunkSize int          `yaml:"chunkSize"`
	Sets      []profileSet `yaml:"sets"`
}

type profileSet struct {
	Type      string         `yaml:"type"`
	Namespace string         `yaml:"namespace"`
	Options   map[string]any `yaml:"options"`
}

func defaultProfile() *profile {
	return &profile{
		Workers:   1,
		ChunkSize: strobe.DefaultChunkSize,
		Sets: []profileSet{
			{Type: "lowlevel"},
			{Type: "levels"},
		},
	}
}

func loadProfile(path string) (*profile, error) {
	if path == "" {
		return defaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := defaultProfile()
	p.Sets = nil
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if len(p.Sets) == 0 {
		return nil, fmt.Errorf("profile %s declares no descriptor sets", path)
	}
	return p, nil
}

func (p *profile) descriptorSets() ([]strobe.DescriptorSet, error) {
	sets := make([]strobe.DescriptorSet, 0, len(p.Sets))
	for _, s := range p.Sets {
		options := strobe.Params(s.Options)
		switch s.Type {
		case "lowlevel":
			set, err := descriptors.NewLowLevelSet(s.Namespace, options)
			if err != nil {
				return nil, err
			}
			sets = append(sets, set)
		case "levels":
			set, err := descriptors.NewLevelsSet(s.Namespace, options)
			if err != nil {
				return nil, err
			}
			sets = append(sets, set)
		default:
			return nil, fmt.Errorf("unknown descriptor set type %q", s.Type)
		}
	}
	return sets, nil
}

// readSamples loads pre-decoded audio: raw little-endian float32 for
// .f32/.raw/.pcm, or a JSON array of numbers for .json.
func readSamples(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var nums []float64
		if err := json.Unmarshal(data, &nums); err != nil {
			return nil, err
		}
		samples := make([]float32, len(nums))
		for i, n := range nums {
			samples[i] = float32(n)
		}
		return samples, nil
	default:
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("raw float32 input length %d is not a multiple of 4", len(data))
		}
		samples := make([]float32, len(data)/4)
		for i := range samples {
			bits := binary.LittleEndian.Uint32(data[i*4:])
			samples[i] = math.Float32frombits(bits)
		}
		return samples, nil
	}
}
