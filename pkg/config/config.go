// Package config loads the shared memory topology every process must agree
// on: SysV keys and capacities for the three queues plus the client store.
// The values are exchanged out of band (a YAML file checked in alongside the
// C++ gateway's); defaults match the gateway's compiled-in key set.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Shm is the shared memory topology section.
type Shm struct {
	MDKey          int `yaml:"md_shm_key"`
	MDQueueSize    int `yaml:"md_queue_size"`
	ReqKey         int `yaml:"request_shm_key"`
	ReqQueueSize   int `yaml:"request_queue_size"`
	RespKey        int `yaml:"response_shm_key"`
	RespQueueSize  int `yaml:"response_queue_size"`
	ClientStoreKey int `yaml:"client_store_shm_key"`
}

// Config is the full process configuration.
type Config struct {
	Shm  Shm    `yaml:"shm"`
	Feed Feed   `yaml:"feed"`
	Nats string `yaml:"nats_url"`
}

// Feed configures the market data simulator.
type Feed struct {
	Symbol    string  `yaml:"symbol"`
	RateHz    int     `yaml:"rate_hz"`
	BasePrice float64 `yaml:"base_price"`
}

// Default returns the topology compiled into the C++ gateway. Every process
// that does not load a file uses exactly these values.
func Default() Config {
	return Config{
		Shm: Shm{
			MDKey:          0x1001,
			MDQueueSize:    65536,
			ReqKey:         0x0F20,
			ReqQueueSize:   4096,
			RespKey:        0x1308,
			RespQueueSize:  4096,
			ClientStoreKey: 0x16F0,
		},
		Feed: Feed{
			Symbol:    "ag2506",
			RateHz:    1000,
			BasePrice: 7950.0,
		},
	}
}

// Load reads path and overlays it on the defaults. Missing keys keep their
// default values, so a file may configure only what it cares about.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
