// Package common holds helpers shared by the vendor dialect packages:
// terminal text cleanup and address validation used by the parsers and the
// session resolver.
package common

import "regexp"

// ansiRegex matches ANSI escape sequences (colors, cursor movement, etc.)
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape codes from a string.
// Useful for parsing CLI output that may contain terminal formatting.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// IPv4Pattern matches a dotted-quad IPv4 token inside terminal output.
const IPv4Pattern = `\d{1,3}(?:\.\d{1,3}){3}`

var ipv4Regex = regexp.MustCompile(`^` + IPv4Pattern + `$`)

// IsUsableAddress reports whether a resolved address is worth returning:
// non-empty, IPv4-shaped, and not the 0.0.0.0 placeholder some
// concentrators report for half-open sessions.
func IsUsableAddress(addr string) bool {
	if addr == "" || addr == "0.0.0.0" {
		return false
	}
	return ipv4Regex.MatchString(addr)
}
