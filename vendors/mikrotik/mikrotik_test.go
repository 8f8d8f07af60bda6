package mikrotik

import "testing"

const activePrintOutput = `Flags: R - radius
 #   NAME         SERVICE CALLER-ID          ADDRESS         UPTIME
 0 R alice        pppoe   AA:BB:CC:DD:EE:01  name="alice" address=10.0.0.9 uptime=1d2h
 1 R bob-home     pppoe   AA:BB:CC:DD:EE:02  name="bob-home" address=10.0.0.12 uptime=4h`

func TestParseSession(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantIP   string
		wantNil  bool
	}{
		{name: "exact user", username: "alice", wantIP: "10.0.0.9"},
		{name: "case insensitive", username: "ALICE", wantIP: "10.0.0.9"},
		{name: "hyphenated user", username: "bob-home", wantIP: "10.0.0.12"},
		{name: "absent user", username: "carol", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSession(activePrintOutput, tt.username)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("ParseSession() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("ParseSession() = nil, want session")
			}
			if got.IPAddress == nil || *got.IPAddress != tt.wantIP {
				t.Errorf("IPAddress = %v, want %s", got.IPAddress, tt.wantIP)
			}
			if got.MACAddress != nil || got.Uptime != nil || got.Interface != nil {
				t.Errorf("parser populated fields it does not extract: %+v", got)
			}
		})
	}
}

func TestParseSessionZeroAddress(t *testing.T) {
	out := ` 0 R dave pppoe AA:BB:CC:DD:EE:03 name="dave" address=0.0.0.0 uptime=1m`
	if got := ParseSession(out, "dave"); got != nil {
		t.Errorf("ParseSession() = %+v, want nil for 0.0.0.0", got)
	}
}

func TestUsernameFromIfDescr(t *testing.T) {
	tests := []struct {
		descr  string
		want   string
		wantOk bool
	}{
		{"<pppoe-alice>", "alice", true},
		{"<ppp-bob-home>", "bob-home", true},
		{"ether1", "", false},
		{"<l2tp-carol>", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.descr, func(t *testing.T) {
			got, ok := UsernameFromIfDescr(tt.descr)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("UsernameFromIfDescr(%q) = %q, %v; want %q, %v", tt.descr, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestProbeOrder(t *testing.T) {
	if len(Probes) != 3 {
		t.Fatalf("len(Probes) = %d, want 3", len(Probes))
	}
	if Probes[0].Label != "active-sessions" || Probes[1].Label != "ppp-secrets" || Probes[2].Label != "if-mib" {
		t.Errorf("probe order = %q, %q, %q", Probes[0].Label, Probes[1].Label, Probes[2].Label)
	}
	if !Probes[2].StandardIfMIB {
		t.Error("if-mib probe must be marked StandardIfMIB")
	}
	if Probes[0].StandardIfMIB || Probes[1].StandardIfMIB {
		t.Error("vendor MIB probes must not be marked StandardIfMIB")
	}
}
