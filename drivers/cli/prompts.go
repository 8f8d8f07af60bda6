// Package cli runs one scripted command against a device over SSH, using an
// expect-driven shell session. Each call opens a fresh connection, waits for
// the prompt, sends the command, captures output until the prompt reappears
// and closes — sessions are never reused across queries.
package cli

import (
	"regexp"
	"strings"
)

// DefaultPromptPattern matches common CLI prompts like "hostname#" or
// "hostname>".
var DefaultPromptPattern = regexp.MustCompile(`(?m)[\w\-\[\]()@.]+[#>]\s*$`)

// VendorPrompts contains vendor-specific prompt patterns.
var VendorPrompts = map[string]*regexp.Regexp{
	"huawei":   regexp.MustCompile(`(?m)(<[\w\-]+>|\[[\w\-~]+\])\s*$`),
	"cisco":    regexp.MustCompile(`(?m)[\w\-]+[#>]\s*$`),
	"mikrotik": regexp.MustCompile(`(?m)\[[\w\-@]+\]\s*[#>]?\s*$|[\w\-\[\]()@.]+[#>]\s*$`),
}

// PagerDisableCommands contains commands to disable terminal paging per
// vendor, so long listings are not truncated mid-output. Mikrotik does not
// page non-interactive print output.
var PagerDisableCommands = map[string]string{
	"huawei": "screen-length 0 temporary",
	"cisco":  "terminal length 0",
}

// PromptFor returns the prompt pattern for a vendor tag.
func PromptFor(vendor string) *regexp.Regexp {
	if re, ok := VendorPrompts[strings.ToLower(vendor)]; ok {
		return re
	}
	return DefaultPromptPattern
}
