package platform

import (
	"fmt"

	"github.com/spf13/viper"
)

// FileConfig is the `mapstructure`-tagged shape of a platform description
// file, loaded through viper the way internal/config loads GlobalConfig.
type FileConfig struct {
	HWTypes  []HWTypeConfig  `mapstructure:"hw_types"`
	Clusters []ClusterConfig `mapstructure:"clusters"`
	Buses    []BusConfig     `mapstructure:"buses"`
	LRTCount int             `mapstructure:"lrt_count"`
}

type HWTypeConfig struct {
	Name string `mapstructure:"name"`
}

type ClusterConfig struct {
	Name string     `mapstructure:"name"`
	PEs  []PEConfig `mapstructure:"pes"`
}

type PEConfig struct {
	Name   string `mapstructure:"name"`
	HWType string `mapstructure:"hw_type"`
	LRT    int    `mapstructure:"lrt"`
}

type BusConfig struct {
	From    string `mapstructure:"from"`
	To      string `mapstructure:"to"`
	Fixed   uint64 `mapstructure:"fixed_cost"`
	PerByte uint64 `mapstructure:"per_byte_cost"`
}

// Load reads a platform description from path (any format viper supports:
// yaml, json, toml) and builds an immutable Platform.
func Load(path string) (*Platform, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read platform config file %q: %w", path, err)
	}
	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode platform config %q: %w", path, err)
	}
	return FromConfig(cfg)
}

// FromConfig resolves the name-based config shape into index-based
// Platform data structures.
func FromConfig(cfg FileConfig) (*Platform, error) {
	hwTypeIx := make(map[string]int, len(cfg.HWTypes))
	hwTypes := make([]HWType, 0, len(cfg.HWTypes))
	for i, h := range cfg.HWTypes {
		hwTypeIx[h.Name] = i
		hwTypes = append(hwTypes, HWType{Ix: i, Name: h.Name})
	}

	clusterIx := make(map[string]int, len(cfg.Clusters))
	var clusters []Cluster
	var pes []PE
	for ci, c := range cfg.Clusters {
		clusterIx[c.Name] = ci
		cluster := Cluster{Ix: ci, Name: c.Name}
		for _, peCfg := range c.PEs {
			hwIx, ok := hwTypeIx[peCfg.HWType]
			if !ok {
				return nil, fmt.Errorf("pe %q references unknown hw_type %q", peCfg.Name, peCfg.HWType)
			}
			pe := PE{
				Ix:        len(pes),
				Name:      peCfg.Name,
				ClusterIx: ci,
				HWTypeIx:  hwIx,
				LRTIx:     peCfg.LRT,
			}
			cluster.PEIx = append(cluster.PEIx, pe.Ix)
			pes = append(pes, pe)
		}
		clusters = append(clusters, cluster)
	}

	var buses []MemoryBus
	for _, b := range cfg.Buses {
		from, ok := clusterIx[b.From]
		if !ok {
			return nil, fmt.Errorf("bus references unknown cluster %q", b.From)
		}
		to, ok := clusterIx[b.To]
		if !ok {
			return nil, fmt.Errorf("bus references unknown cluster %q", b.To)
		}
		buses = append(buses, MemoryBus{FromCluster: from, ToCluster: to, Fixed: b.Fixed, PerByte: b.PerByte})
	}

	lrtCount := cfg.LRTCount
	if lrtCount == 0 {
		for _, pe := range pes {
			if pe.LRTIx+1 > lrtCount {
				lrtCount = pe.LRTIx + 1
			}
		}
	}
	if len(pes) == 0 {
		return nil, fmt.Errorf("platform config declares no processing elements")
	}
	if lrtCount == 0 {
		return nil, fmt.Errorf("platform config declares zero LRTs")
	}
	return New(pes, clusters, hwTypes, lrtCount, buses), nil
}
