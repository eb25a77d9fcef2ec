// Package config loads the on-disk description of a graph and host
// settings the demo command reads at startup. The core engine stays
// schema-agnostic; this YAML shape exists only for cmd/graphhost.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NodeSpec describes one node to instantiate, by a host-defined type
// name resolved through a registry the caller owns.
type NodeSpec struct {
	ID         uint32    `yaml:"id"`
	Type       string    `yaml:"type"`
	Channels   int       `yaml:"channels"`
	Gain       float32   `yaml:"gain,omitempty"`
	GainDB     *float32  `yaml:"gain_db,omitempty"`
	Delay      int       `yaml:"delay_samples,omitempty"`
	Position   float32   `yaml:"position,omitempty"`
	Threshold  float32   `yaml:"threshold,omitempty"`
	Width      float32   `yaml:"width,omitempty"`
	Balance    float32   `yaml:"balance,omitempty"`
	NumInputs  int       `yaml:"num_inputs,omitempty"`
	InputGains []float32 `yaml:"input_gains,omitempty"`
}

// ConnectionSpec describes one arc between two node ports.
type ConnectionSpec struct {
	SrcNode uint32 `yaml:"src_node"`
	SrcPort uint32 `yaml:"src_port"`
	DstNode uint32 `yaml:"dst_node"`
	DstPort uint32 `yaml:"dst_port"`
}

// GraphSpec is the full on-disk graph description: render settings
// plus the nodes and connections to build.
type GraphSpec struct {
	SampleRate      float64          `yaml:"sample_rate"`
	BlockSize       int              `yaml:"block_size"`
	AudioChannels   int              `yaml:"audio_channels"`
	MidiChannelMask *uint16          `yaml:"midi_channel_mask,omitempty"`
	VelocityCurve   *int32           `yaml:"velocity_curve,omitempty"`
	Nodes           []NodeSpec       `yaml:"nodes"`
	Connections     []ConnectionSpec `yaml:"connections"`
}

// HostConfig is the demo host's own settings, layered on top of a
// GraphSpec loaded from a separate file.
type HostConfig struct {
	GraphPath   string `yaml:"graph"`
	InputPath   string `yaml:"input"`
	OutputPath  string `yaml:"output"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// LoadGraphSpec reads and parses a graph description from path.
func LoadGraphSpec(path string) (*GraphSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read graph spec: %w", err)
	}
	var spec GraphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("config: parse graph spec: %w", err)
	}
	if spec.SampleRate <= 0 {
		return nil, fmt.Errorf("config: sample_rate must be positive")
	}
	if spec.BlockSize <= 0 {
		return nil, fmt.Errorf("config: block_size must be positive")
	}
	return &spec, nil
}

// LoadHostConfig reads and parses the demo host's own settings from path.
func LoadHostConfig(path string) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read host config: %w", err)
	}
	var cfg HostConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse host config: %w", err)
	}
	return &cfg, nil
}
