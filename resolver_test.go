package netquery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ispmon/netquery/types"
)

// fakeTransport scripts walk results per OID and records which OIDs and
// commands were exercised.
type fakeTransport struct {
	mu       sync.Mutex
	walks    map[string]types.WalkResult
	walked   []string
	shell    string
	shellErr error
	ran      []string
}

func (f *fakeTransport) walk(_ types.EquipmentTarget, _ *types.SnmpProfile, baseOID string, _ time.Duration) types.WalkResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.walked = append(f.walked, baseOID)
	if res, ok := f.walks[baseOID]; ok {
		return res
	}
	return types.WalkResult{}
}

func (f *fakeTransport) run(_ types.EquipmentTarget, command string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, command)
	return f.shell, f.shellErr
}

func newTestResolver(f *fakeTransport) *Resolver {
	return &Resolver{
		log:         zerolog.Nop(),
		walk:        f.walk,
		run:         f.run,
		walkTimeout: time.Second,
		runTimeout:  time.Second,
	}
}

func mikrotikTarget() types.EquipmentTarget {
	return types.EquipmentTarget{
		Name:     "bras-1",
		Address:  "10.1.1.1",
		Vendor:   types.VendorMikrotik,
		Username: "admin",
		Password: "secret",
	}
}

func TestResolveSessionsPrimaryPair(t *testing.T) {
	probes := ProbesFor(types.VendorMikrotik)
	f := &fakeTransport{walks: map[string]types.WalkResult{
		probes[0].UserOID:    {"5": "alice"},
		probes[0].AddressOID: {"5": "10.0.0.9"},
	}}
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), mikrotikTarget(), []string{"alice", "bob"}, nil)

	if len(got) != 1 {
		t.Fatalf("len(result) = %d, want 1: %+v", len(got), got)
	}
	info, ok := got["alice"]
	if !ok {
		t.Fatal("alice missing from result")
	}
	if info.Username != "alice" {
		t.Errorf("Username = %q, want alice", info.Username)
	}
	if info.IPAddress == nil || *info.IPAddress != "10.0.0.9" {
		t.Errorf("IPAddress = %v, want 10.0.0.9", info.IPAddress)
	}
	if info.MACAddress != nil || info.Uptime != nil || info.Interface != nil {
		t.Errorf("unextracted fields must stay nil: %+v", info)
	}
	if _, ok := got["bob"]; ok {
		t.Error("bob should not resolve")
	}
	if len(f.ran) != 0 {
		t.Errorf("SSH fallback ran %v despite SNMP success", f.ran)
	}
}

func TestResolveSessionsFirstNonEmptyPairWins(t *testing.T) {
	probes := ProbesFor(types.VendorMikrotik)
	f := &fakeTransport{walks: map[string]types.WalkResult{
		// Primary pair empty; secondary answers; standard fallback also has
		// data that must never be consulted.
		probes[1].UserOID:    {"7": "alice"},
		probes[1].AddressOID: {"7": "10.0.0.21"},
		probes[2].UserOID:    {"3": "<pppoe-alice>"},
		probes[2].AddressOID: {"10.0.0.99": "3"},
	}}
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), mikrotikTarget(), []string{"alice"}, nil)

	info, ok := got["alice"]
	if !ok {
		t.Fatal("alice missing")
	}
	if *info.IPAddress != "10.0.0.21" {
		t.Errorf("IPAddress = %s, want 10.0.0.21 from the ppp-secrets pair", *info.IPAddress)
	}
	for _, oid := range f.walked {
		if oid == probes[2].UserOID {
			t.Error("third pair walked although second already produced usernames")
		}
	}
}

func TestResolveSessionsStandardMIBInversion(t *testing.T) {
	probes := ProbesFor(types.VendorMikrotik)
	f := &fakeTransport{walks: map[string]types.WalkResult{
		// Only the if-mib fallback answers. ifDescr: ifIndex -> synthetic
		// name; ipAdEntIfIndex: IP -> ifIndex, which must be inverted by
		// decoded value before matching.
		probes[2].UserOID:    {"12": "<pppoe-alice>", "13": "ether1"},
		probes[2].AddressOID: {"10.0.0.9": "12", "192.168.88.1": "13"},
	}}
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), mikrotikTarget(), []string{"alice"}, nil)

	info, ok := got["alice"]
	if !ok {
		t.Fatalf("alice missing: %+v", got)
	}
	if *info.IPAddress != "10.0.0.9" {
		t.Errorf("IPAddress = %s, want 10.0.0.9", *info.IPAddress)
	}
}

func TestResolveSessionsCaseInsensitiveExactMatch(t *testing.T) {
	probes := ProbesFor(types.VendorMikrotik)
	f := &fakeTransport{walks: map[string]types.WalkResult{
		probes[0].UserOID:    {"1": "user1", "2": "user12"},
		probes[0].AddressOID: {"1": "10.0.0.1", "2": "10.0.0.2"},
	}}
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), mikrotikTarget(), []string{"User1"}, nil)

	info, ok := got["User1"]
	if !ok {
		t.Fatal("User1 missing; case-insensitive match failed")
	}
	if *info.IPAddress != "10.0.0.1" {
		t.Errorf("IPAddress = %s, want 10.0.0.1 (user12 must not match)", *info.IPAddress)
	}
}

func TestResolveSessionsRejectsZeroAddress(t *testing.T) {
	probes := ProbesFor(types.VendorMikrotik)
	f := &fakeTransport{walks: map[string]types.WalkResult{
		probes[0].UserOID:    {"5": "alice"},
		probes[0].AddressOID: {"5": "0.0.0.0"},
	}}
	// No shell credentials, so the fallback stays off and the result is
	// empty rather than 0.0.0.0.
	target := mikrotikTarget()
	target.Password = ""
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), target, []string{"alice"}, nil)
	if len(got) != 0 {
		t.Errorf("result = %+v, want empty for 0.0.0.0", got)
	}
}

func TestResolveSessionsNoSSHWhenPartiallyResolved(t *testing.T) {
	probes := ProbesFor(types.VendorMikrotik)
	f := &fakeTransport{
		walks: map[string]types.WalkResult{
			probes[0].UserOID:    {"5": "alice"},
			probes[0].AddressOID: {"5": "10.0.0.9"},
		},
		shell: `name="bob" address=10.0.0.12`,
	}
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), mikrotikTarget(), []string{"alice", "bob"}, nil)

	if _, ok := got["bob"]; ok {
		t.Error("bob resolved via SSH although SNMP already returned a username")
	}
	if len(f.ran) != 0 {
		t.Errorf("SSH fallback ran %v; must not fire when SNMP resolved anything", f.ran)
	}
}

func TestResolveSessionsSSHFallback(t *testing.T) {
	f := &fakeTransport{
		walks: map[string]types.WalkResult{},
		shell: ` 0 R alice pppoe AA:BB name="alice" address=10.0.0.9 uptime=2h`,
	}
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), mikrotikTarget(), []string{"alice"}, nil)

	info, ok := got["alice"]
	if !ok {
		t.Fatalf("alice missing after SSH fallback: %+v", got)
	}
	if *info.IPAddress != "10.0.0.9" {
		t.Errorf("IPAddress = %s, want 10.0.0.9", *info.IPAddress)
	}
	if len(f.ran) != 1 || f.ran[0] != "/ppp active print" {
		t.Errorf("commands run = %v, want [/ppp active print]", f.ran)
	}
}

func TestResolveSessionsSSHFallbackSkippedWithoutCredentials(t *testing.T) {
	f := &fakeTransport{walks: map[string]types.WalkResult{}}
	target := mikrotikTarget()
	target.Password = ""
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), target, []string{"alice"}, nil)
	if len(got) != 0 {
		t.Errorf("result = %+v, want empty", got)
	}
	if len(f.ran) != 0 {
		t.Errorf("shell ran %v without credentials", f.ran)
	}
}

func TestResolveSessionsShellErrorYieldsEmpty(t *testing.T) {
	f := &fakeTransport{
		walks:    map[string]types.WalkResult{},
		shellErr: errors.New("connection refused"),
	}
	r := newTestResolver(f)

	got := r.ResolveSessions(context.Background(), mikrotikTarget(), []string{"alice"}, nil)
	if len(got) != 0 {
		t.Errorf("result = %+v, want empty on shell error", got)
	}
}

func TestResolveSessionsNoAddressShortCircuits(t *testing.T) {
	f := &fakeTransport{walks: map[string]types.WalkResult{}}
	r := newTestResolver(f)

	target := mikrotikTarget()
	target.Address = ""

	got := r.ResolveSessions(context.Background(), target, []string{"alice"}, nil)
	if len(got) != 0 {
		t.Errorf("result = %+v, want empty", got)
	}
	if len(f.walked) != 0 || len(f.ran) != 0 {
		t.Error("no I/O may be attempted without an address")
	}
}

func TestResolveSessionsCiscoCatalog(t *testing.T) {
	probes := ProbesFor(types.VendorCisco)
	if len(probes) != 1 {
		t.Fatalf("cisco probes = %d, want 1", len(probes))
	}
	f := &fakeTransport{walks: map[string]types.WalkResult{
		probes[0].UserOID:    {"9": "carol"},
		probes[0].AddressOID: {"9": "10.0.0.14"},
	}}
	r := newTestResolver(f)

	target := mikrotikTarget()
	target.Vendor = types.VendorCisco

	got := r.ResolveSessions(context.Background(), target, []string{"carol"}, nil)
	if info, ok := got["carol"]; !ok || *info.IPAddress != "10.0.0.14" {
		t.Errorf("result = %+v, want carol -> 10.0.0.14", got)
	}
}

func TestResolveSessionsGenericUsesDefaultCatalog(t *testing.T) {
	def := ProbesFor(types.VendorGeneric)
	mk := ProbesFor(types.VendorMikrotik)
	if len(def) != len(mk) || def[0].UserOID != mk[0].UserOID {
		t.Error("generic vendor must use the default (Mikrotik) catalog")
	}
}
