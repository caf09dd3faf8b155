// Package config loads the server's YAML configuration, adapted from
// the teacher's pkg/config/config.go: the same ordered default search
// paths, Load/loadFile/Save/DefaultConfig shape and
// go-playground/validator/v10 struct validation, rewired from a
// gateway-list config onto a device-registry config (spec.md §4.3).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/commatea/hapticbridge/pkg/deviceconfig"
	"github.com/commatea/hapticbridge/pkg/logger"
	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/protocol"
	"github.com/commatea/hapticbridge/pkg/transport/wsdevice"
)

// Default config file locations, checked in order when no explicit path
// is given.
var configPaths = []string{
	"./hapticbridge.yaml",
	"./hapticbridge.yml",
	"~/.config/hapticbridge/config.yaml",
	"/etc/hapticbridge/config.yaml",
}

// Config is the top-level server configuration.
type Config struct {
	Logging logger.Config `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Ping    PingConfig    `yaml:"ping"`

	AllowRawMessages bool     `yaml:"allow_raw_messages"`
	AllowedAddresses []string `yaml:"allowed_addresses"`
	DeniedAddresses  []string `yaml:"denied_addresses"`

	Devices   []DeviceProtocolConfig `yaml:"devices" validate:"dive"`
	Websocket wsdevice.Config        `yaml:"websocket"`
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// PingConfig controls the optional keep-alive watchdog.
type PingConfig struct {
	MaxPingTimeMS uint32 `yaml:"max_ping_time_ms"`
}

// DeviceProtocolConfig binds one protocol name to its matching
// specifiers and the attribute sets it advertises, the YAML-friendly
// mirror of deviceconfig.ProtocolDeviceConfiguration (whose Factory
// field can't round-trip through YAML).
type DeviceProtocolConfig struct {
	Protocol string `yaml:"protocol" validate:"required"`

	BLE       *BLESpecifierConfig       `yaml:"ble,omitempty"`
	Serial    *SerialSpecifierConfig    `yaml:"serial,omitempty"`
	Websocket *WebsocketSpecifierConfig `yaml:"websocket,omitempty"`

	// Attributes maps a ProtocolAttributesIdentifier.Identifier
	// ("default" for single-flavor protocols, a model name for
	// multi-flavor ones) to the message attributes that flavor
	// advertises.
	Attributes map[string][]AttributeConfig `yaml:"attributes"`
}

// BLESpecifierConfig is deviceconfig.BLESpecifier in YAML form.
type BLESpecifierConfig struct {
	Names        []string `yaml:"names"`
	NamePrefix   string   `yaml:"name_prefix"`
	ServiceUUIDs []string `yaml:"service_uuids"`
}

// SerialSpecifierConfig is deviceconfig.SerialSpecifier in YAML form.
type SerialSpecifierConfig struct {
	PortPrefix string `yaml:"port_prefix"`
}

// WebsocketSpecifierConfig is deviceconfig.WebsocketSpecifier in YAML form.
type WebsocketSpecifierConfig struct {
	Names      []string `yaml:"names"`
	NamePrefix string   `yaml:"name_prefix"`
}

// AttributeConfig is one message.Attributes entry in YAML form, keyed
// by the message name it describes (e.g. "ScalarCmd").
type AttributeConfig struct {
	Message      string   `yaml:"message" validate:"required"`
	FeatureCount uint32   `yaml:"feature_count"`
	StepCount    []uint32 `yaml:"step_count,omitempty"`
	ActuatorType []string `yaml:"actuator_type,omitempty"`
	SensorType   []string `yaml:"sensor_type,omitempty"`
	Endpoints    []string `yaml:"endpoints,omitempty"`
}

// DefaultConfig returns a minimal, safe-to-run configuration: logging to
// stdout at info level, metrics disabled, no ping timeout, no devices
// configured.
func DefaultConfig() *Config {
	return &Config{
		Logging:   logger.Config{Level: "info", Format: "text", Output: "stdout"},
		Metrics:   MetricsConfig{Enabled: false, ListenAddr: ":9090"},
		Websocket: wsdevice.DefaultConfig(),
	}
}

// Load loads configuration from path, or the first default path that
// exists, falling back to DefaultConfig if none do.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, p := range configPaths {
		if len(p) > 0 && p[0] == '~' {
			home, err := os.UserHomeDir()
			if err == nil {
				p = filepath.Join(home, p[2:])
			}
		}
		if _, err := os.Stat(p); err == nil {
			return loadFile(p)
		}
	}
	return DefaultConfig(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs the struct-tag validation rules over cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// Save writes cfg to path as YAML, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// BuildDeviceManager builds a deviceconfig.Manager from cfg's device
// entries, resolving each entry's protocol name against the already
// registered protocol.Factory set (spec.md §4.3/§4.4). An entry naming
// a protocol with no registered factory is an error: the configuration
// is meaningless without something to hand matched hardware to.
func (c *Config) BuildDeviceManager(registry *protocol.Registry) (*deviceconfig.Manager, error) {
	b := deviceconfig.NewBuilder()

	for _, addr := range c.AllowedAddresses {
		b = b.AllowedAddress(addr)
	}
	for _, addr := range c.DeniedAddresses {
		b = b.DeniedAddress(addr)
	}
	if c.AllowRawMessages {
		b = b.AllowRawMessages()
	}

	for _, dev := range c.Devices {
		factory, ok := registry.Lookup(dev.Protocol)
		if !ok {
			return nil, fmt.Errorf("config: protocol %q has no registered factory", dev.Protocol)
		}

		var specifiers []deviceconfig.CommunicationSpecifier
		if dev.BLE != nil {
			specifiers = append(specifiers, deviceconfig.CommunicationSpecifier{BLE: &deviceconfig.BLESpecifier{
				Names:        dev.BLE.Names,
				NamePrefix:   dev.BLE.NamePrefix,
				ServiceUUIDs: dev.BLE.ServiceUUIDs,
			}})
		}
		if dev.Serial != nil {
			specifiers = append(specifiers, deviceconfig.CommunicationSpecifier{Serial: &deviceconfig.SerialSpecifier{
				PortPrefix: dev.Serial.PortPrefix,
			}})
		}
		if dev.Websocket != nil {
			specifiers = append(specifiers, deviceconfig.CommunicationSpecifier{Websocket: &deviceconfig.WebsocketSpecifier{
				Names:      dev.Websocket.Names,
				NamePrefix: dev.Websocket.NamePrefix,
			}})
		}

		attrs := map[string]message.AttributesMap{}
		for identifier, entries := range dev.Attributes {
			m := message.NewAttributesMap()
			for _, e := range entries {
				m.Set(e.Message, message.Attributes{
					FeatureCount: e.FeatureCount,
					StepCount:    e.StepCount,
					ActuatorType: e.ActuatorType,
					SensorType:   e.SensorType,
					Endpoints:    e.Endpoints,
				})
			}
			attrs[identifier] = m
		}

		b = b.ProtocolFactory(deviceconfig.ProtocolDeviceConfiguration{
			Factory:    factory,
			Specifiers: specifiers,
			Attributes: attrs,
		})
	}

	return b.Finish(), nil
}
