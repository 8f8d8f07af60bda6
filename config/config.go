// Package config loads the YAML equipment inventory consumed by the
// netquery command-line tool. The library API itself takes records as plain
// arguments; this file format is a convenience for operators, not a
// registry.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ispmon/netquery/types"
)

// DefaultPath is used when NETQUERY_CONFIG is unset.
const DefaultPath = "/etc/netquery/equipment.yaml"

// PathFromEnv returns the configured inventory path.
func PathFromEnv() string {
	if v := os.Getenv("NETQUERY_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Equipment is one inventory record as written in YAML.
type Equipment struct {
	Name        string `yaml:"name"`
	Address     string `yaml:"address"`
	Port        int    `yaml:"port"`
	Vendor      string `yaml:"vendor"`
	Transport   string `yaml:"transport"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	SnmpProfile string `yaml:"snmp_profile"`
}

// Profile is one SNMP profile as written in YAML.
type Profile struct {
	Version        string `yaml:"version"`
	Community      string `yaml:"community"`
	SecurityLevel  string `yaml:"security_level"`
	Username       string `yaml:"username"`
	AuthProtocol   string `yaml:"auth_protocol"`
	AuthPassphrase string `yaml:"auth_passphrase"`
	PrivProtocol   string `yaml:"priv_protocol"`
	PrivPassphrase string `yaml:"priv_passphrase"`
	TimeoutMs      int    `yaml:"timeout_ms"`
	Retries        int    `yaml:"retries"`
}

// Inventory is the parsed equipment file.
type Inventory struct {
	Profiles  map[string]Profile `yaml:"snmp_profiles"`
	Equipment []Equipment        `yaml:"equipment"`
}

// Load reads and parses one inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory %s: %w", path, err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory %s: %w", path, err)
	}

	for i, eq := range inv.Equipment {
		if eq.Name == "" {
			return nil, fmt.Errorf("inventory %s: equipment entry %d has no name", path, i)
		}
		if eq.SnmpProfile != "" {
			if _, ok := inv.Profiles[eq.SnmpProfile]; !ok {
				return nil, fmt.Errorf("inventory %s: equipment %q references unknown snmp profile %q", path, eq.Name, eq.SnmpProfile)
			}
		}
	}
	return &inv, nil
}

// Target resolves one equipment record by name into the query-layer types,
// along with its SNMP profile (nil when none is referenced).
func (inv *Inventory) Target(name string) (types.EquipmentTarget, *types.SnmpProfile, error) {
	for _, eq := range inv.Equipment {
		if eq.Name != name {
			continue
		}
		target := types.EquipmentTarget{
			Name:      eq.Name,
			Address:   eq.Address,
			Port:      eq.Port,
			Vendor:    types.Vendor(eq.Vendor),
			Transport: types.Transport(eq.Transport),
			Username:  eq.Username,
			Password:  eq.Password,
		}
		if eq.SnmpProfile == "" {
			return target, nil, nil
		}
		p := inv.Profiles[eq.SnmpProfile]
		return target, &types.SnmpProfile{
			Version:        p.Version,
			Community:      p.Community,
			SecurityLevel:  p.SecurityLevel,
			Username:       p.Username,
			AuthProtocol:   p.AuthProtocol,
			AuthPassphrase: p.AuthPassphrase,
			PrivProtocol:   p.PrivProtocol,
			PrivPassphrase: p.PrivPassphrase,
			TimeoutMs:      p.TimeoutMs,
			Retries:        p.Retries,
		}, nil
	}
	return types.EquipmentTarget{}, nil, fmt.Errorf("equipment %q not found in inventory", name)
}
