// Package mikrotik implements the RouterOS dialect: SNMP probe catalog and
// terminal output parsing for PPPoE session lookups. It doubles as the
// default dialect for untagged equipment.
package mikrotik

import (
	"regexp"

	"github.com/ispmon/netquery/types"
	"github.com/ispmon/netquery/vendors/common"
)

// SNMP probe catalog, tried strictly in order; the first pair whose
// username walk returns entries wins.
//
// The last-resort pair reads the standard interface tables: RouterOS
// exposes one synthetic interface per PPP session, named <ppp-USERNAME>,
// and ipAdEntIfIndex maps address->ifIndex, so that pair needs the inverted
// matching path.
var Probes = []types.OidPair{
	{
		Label:      "active-sessions",
		UserOID:    "1.3.6.1.4.1.14988.1.1.13.1.1.2", // active PPP session name
		AddressOID: "1.3.6.1.4.1.14988.1.1.13.1.1.4", // active PPP session address
	},
	{
		Label:      "ppp-secrets",
		UserOID:    "1.3.6.1.4.1.14988.1.1.13.2.1.2", // configured secret name
		AddressOID: "1.3.6.1.4.1.14988.1.1.13.2.1.5", // configured remote address
	},
	{
		Label:         "if-mib",
		UserOID:       "1.3.6.1.2.1.2.2.1.2",    // ifDescr, values like <pppoe-alice>
		AddressOID:    "1.3.6.1.2.1.4.20.1.2",   // ipAdEntIfIndex, index is the IP
		StandardIfMIB: true,
	},
}

// SessionListCommand lists active PPP sessions on a RouterOS shell.
const SessionListCommand = "/ppp active print"

// syntheticIfRE extracts the username from a <ppp-USERNAME> or
// <pppoe-USERNAME> interface description.
var syntheticIfRE = regexp.MustCompile(`^<ppp(?:oe)?-(.+)>$`)

// UsernameFromIfDescr extracts the subscriber name from a synthetic PPP
// interface description. Returns false for regular interfaces.
func UsernameFromIfDescr(descr string) (string, bool) {
	m := syntheticIfRE.FindStringSubmatch(descr)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseSession extracts one subscriber's address from `/ppp active print`
// output. RouterOS prints one logical record per session; the username must
// be followed by an address=<ip> token within that record. Returns nil when
// the subscriber has no active session.
func ParseSession(output, username string) *types.PppoeSessionInfo {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(username) + `[^\n]*?address=(` + common.IPv4Pattern + `)`)
	m := re.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	ip := m[1]
	if !common.IsUsableAddress(ip) {
		return nil
	}
	return &types.PppoeSessionInfo{Username: username, IPAddress: &ip}
}
