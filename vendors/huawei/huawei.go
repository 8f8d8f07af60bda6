// Package huawei implements the Huawei BRAS dialect (MA5200/ME60 family)
// for PPPoE session lookups.
package huawei

import (
	"regexp"
	"strings"

	"github.com/ispmon/netquery/types"
	"github.com/ispmon/netquery/vendors/common"
)

// Probes holds the single known Huawei dialect: the access-user table from
// HUAWEI-BRAS-MIB.
var Probes = []types.OidPair{
	{
		Label:      "access-user",
		UserOID:    "1.3.6.1.4.1.2011.5.2.1.15.1.3",  // hwAccessUserName
		AddressOID: "1.3.6.1.4.1.2011.5.2.1.15.1.15", // hwAccessUserIpAddress
	},
}

// SessionListCommand lists online access users on a VRP shell.
const SessionListCommand = "display access-user"

// ipLineRE matches the "IP: <addr>" / "IP address: <addr>" detail line.
var ipLineRE = regexp.MustCompile(`(?i)IP[\w\s]*:\s*(` + common.IPv4Pattern + `)`)

// detailWindow is how many lines after the username line the address may
// appear in `display access-user` detail output.
const detailWindow = 10

// ParseSession locates the line carrying the username, then scans the
// following lines for an IP token. Returns nil when the subscriber is not
// online.
func ParseSession(output, username string) *types.PppoeSessionInfo {
	needle := strings.ToLower(username)
	lines := strings.Split(output, "\n")

	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		end := i + detailWindow
		if end > len(lines) {
			end = len(lines)
		}
		for _, candidate := range lines[i:end] {
			m := ipLineRE.FindStringSubmatch(candidate)
			if m == nil {
				continue
			}
			ip := m[1]
			if !common.IsUsableAddress(ip) {
				continue
			}
			return &types.PppoeSessionInfo{Username: username, IPAddress: &ip}
		}
		return nil
	}
	return nil
}
