package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ispmon/netquery/types"
)

const sampleInventory = `
snmp_profiles:
  core:
    version: "3"
    username: noc
    security_level: authPriv
    auth_protocol: sha
    auth_passphrase: aaa
    priv_protocol: aes
    priv_passphrase: ppp
    timeout_ms: 4000
    retries: 2
equipment:
  - name: bras-1
    address: 10.1.1.1
    vendor: mikrotik
    transport: ssh
    username: admin
    password: secret
    snmp_profile: core
  - name: olt-1
    address: 10.2.2.2
    port: 2323
    vendor: huawei
    transport: telnet
    username: admin
    password: secret
`

func writeInventory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "equipment.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	inv, err := Load(writeInventory(t, sampleInventory))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(inv.Equipment) != 2 {
		t.Fatalf("len(Equipment) = %d, want 2", len(inv.Equipment))
	}

	target, profile, err := inv.Target("bras-1")
	if err != nil {
		t.Fatalf("Target() error: %v", err)
	}
	if target.Vendor != types.VendorMikrotik {
		t.Errorf("Vendor = %q, want mikrotik", target.Vendor)
	}
	if profile == nil {
		t.Fatal("profile = nil, want core profile")
	}
	if profile.Version != "3" || profile.AuthProtocol != "sha" || profile.TimeoutMs != 4000 {
		t.Errorf("profile = %+v", profile)
	}

	target, profile, err = inv.Target("olt-1")
	if err != nil {
		t.Fatalf("Target() error: %v", err)
	}
	if target.Transport != types.TransportTelnet || target.Port != 2323 {
		t.Errorf("olt target = %+v", target)
	}
	if profile != nil {
		t.Errorf("profile = %+v, want nil without snmp_profile", profile)
	}
}

func TestLoadRejectsUnknownProfileRef(t *testing.T) {
	bad := `
equipment:
  - name: bras-1
    address: 10.1.1.1
    snmp_profile: missing
`
	if _, err := Load(writeInventory(t, bad)); err == nil {
		t.Error("Load() accepted a dangling snmp_profile reference")
	}
}

func TestLoadRejectsNamelessEquipment(t *testing.T) {
	bad := `
equipment:
  - address: 10.1.1.1
`
	if _, err := Load(writeInventory(t, bad)); err == nil {
		t.Error("Load() accepted equipment without a name")
	}
}

func TestTargetNotFound(t *testing.T) {
	inv, err := Load(writeInventory(t, sampleInventory))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := inv.Target("nope"); err == nil {
		t.Error("Target() found nonexistent equipment")
	}
}
