// Package netquery resolves live subscriber sessions and hardware alarms
// from access concentrators and OLTs over SNMP, SSH and Telnet. It is a
// pure query/translate layer: all data originates from the device and is
// handed back to the caller, which owns persistence.
package netquery

import (
	"github.com/ispmon/netquery/types"
	"github.com/ispmon/netquery/vendors/cisco"
	"github.com/ispmon/netquery/vendors/huawei"
	"github.com/ispmon/netquery/vendors/mikrotik"
)

// sessionProbe bundles everything one vendor dialect needs for a PPPoE
// lookup: the ordered SNMP probe catalog, the interactive listing command,
// and the matching output parser. Keeping this in one table keeps the
// "first non-empty pair wins" rule in exactly one loop.
type sessionProbe struct {
	probes       []types.OidPair
	listCommand  string
	parseSession func(output, username string) *types.PppoeSessionInfo
}

var probeCatalog = map[types.Vendor]sessionProbe{
	types.VendorMikrotik: {
		probes:       mikrotik.Probes,
		listCommand:  mikrotik.SessionListCommand,
		parseSession: mikrotik.ParseSession,
	},
	types.VendorCisco: {
		probes:       cisco.Probes,
		listCommand:  cisco.SessionListCommand,
		parseSession: cisco.ParseSession,
	},
	types.VendorHuawei: {
		probes:       huawei.Probes,
		listCommand:  huawei.SessionListCommand,
		parseSession: huawei.ParseSession,
	},
}

// probeFor returns the dialect descriptor for a vendor. Generic and unknown
// vendor tags use the Mikrotik catalog, whose last probe is the standard
// interface MIB that any RFC 1213 device answers.
func probeFor(vendor types.Vendor) sessionProbe {
	if p, ok := probeCatalog[vendor]; ok {
		return p
	}
	return probeCatalog[types.VendorMikrotik]
}

// ProbesFor exposes the ordered OID catalog for a vendor tag.
func ProbesFor(vendor types.Vendor) []types.OidPair {
	return probeFor(vendor).probes
}

// SessionListCommandFor exposes the vendor's interactive session listing
// command, used by the SSH fallback path.
func SessionListCommandFor(vendor types.Vendor) string {
	return probeFor(vendor).listCommand
}
