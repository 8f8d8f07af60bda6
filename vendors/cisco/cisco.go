// Package cisco implements the IOS BRAS dialect for PPPoE session lookups.
package cisco

import (
	"regexp"
	"strings"

	"github.com/ispmon/netquery/types"
	"github.com/ispmon/netquery/vendors/common"
)

// Probes holds the single known Cisco dialect: the AAA session table from
// CISCO-AAA-SESSION-MIB.
var Probes = []types.OidPair{
	{
		Label:      "aaa-session",
		UserOID:    "1.3.6.1.4.1.9.9.150.1.1.3.1.3", // casnUserId
		AddressOID: "1.3.6.1.4.1.9.9.150.1.1.3.1.6", // casnIpAddr
	},
}

// SessionListCommand lists subscriber sessions on an IOS shell.
const SessionListCommand = "show subscriber session all"

var ipv4TokenRE = regexp.MustCompile(common.IPv4Pattern)

// ParseSession scans line by line: a line containing the username together
// with an IPv4-shaped token yields the match. Returns nil when no line
// qualifies.
func ParseSession(output, username string) *types.PppoeSessionInfo {
	needle := strings.ToLower(username)

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		ip := ipv4TokenRE.FindString(line)
		if !common.IsUsableAddress(ip) {
			continue
		}
		return &types.PppoeSessionInfo{Username: username, IPAddress: &ip}
	}
	return nil
}
