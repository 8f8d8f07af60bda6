// Package snmp builds gosnmp sessions from profile records and performs
// bounded subtree walks. SNMP is the preferred transport for session
// lookups; the interactive drivers are the fallback.
package snmp

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/ispmon/netquery/types"
)

const (
	// DefaultPort is the SNMP agent port.
	DefaultPort = 161

	// DefaultTimeout and DefaultRetries apply when no profile is supplied.
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 1
)

// NewSession creates and connects a gosnmp session for the target using the
// given profile. A nil profile yields a v2c session with community "public"
// and the default timeout/retry bounds. The caller owns the session and is
// responsible for closing it via Walk or Conn.Close.
func NewSession(target types.EquipmentTarget, profile *types.SnmpProfile) (*gosnmp.GoSNMP, error) {
	g := BuildSession(target, profile)

	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect %s:%d: %w", g.Target, g.Port, err)
	}
	return g, nil
}

// BuildSession maps a profile onto an unconnected gosnmp session. Split from
// NewSession so the mapping is testable without a reachable agent.
func BuildSession(target types.EquipmentTarget, profile *types.SnmpProfile) *gosnmp.GoSNMP {
	port := target.Port
	if port <= 0 || port > 65535 {
		port = DefaultPort
	}

	g := &gosnmp.GoSNMP{
		Target:  target.Address,
		Port:    uint16(port),
		Version: gosnmp.Version2c,
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
		MaxOids: 60,
	}

	if profile == nil {
		g.Community = "public"
		return g
	}

	if profile.TimeoutMs > 0 {
		g.Timeout = time.Duration(profile.TimeoutMs) * time.Millisecond
	}
	if profile.Retries > 0 {
		g.Retries = profile.Retries
	}

	switch profile.Version {
	case "1":
		g.Version = gosnmp.Version1
		g.Community = communityOr(profile.Community)
	case "3":
		g.Version = gosnmp.Version3
		g.SecurityModel = gosnmp.UserSecurityModel
		g.MsgFlags = msgFlags(profile)
		g.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 profile.Username,
			AuthenticationProtocol:   mapAuthProto(profile.AuthProtocol),
			AuthenticationPassphrase: profile.AuthPassphrase,
			PrivacyProtocol:          mapPrivProto(profile.PrivProtocol),
			PrivacyPassphrase:        profile.PrivPassphrase,
		}
	default:
		// "2c" and anything unrecognized: best-effort connectivity over
		// failing fast, many field devices advertise incomplete capability.
		g.Version = gosnmp.Version2c
		g.Community = communityOr(profile.Community)
	}

	return g
}

func communityOr(c string) string {
	if c == "" {
		return "public"
	}
	return c
}

// msgFlags derives the v3 security level. An explicit SecurityLevel wins;
// otherwise the level is inferred from which protocols are configured.
func msgFlags(p *types.SnmpProfile) gosnmp.SnmpV3MsgFlags {
	switch strings.ToLower(p.SecurityLevel) {
	case "authpriv":
		return gosnmp.AuthPriv
	case "authnopriv":
		return gosnmp.AuthNoPriv
	case "noauthnopriv":
		return gosnmp.NoAuthNoPriv
	}

	hasAuth := mapAuthProto(p.AuthProtocol) != gosnmp.NoAuth
	hasPriv := mapPrivProto(p.PrivProtocol) != gosnmp.NoPriv
	switch {
	case hasAuth && hasPriv:
		return gosnmp.AuthPriv
	case hasAuth:
		return gosnmp.AuthNoPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

func mapAuthProto(s string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToLower(s) {
	case "md5":
		return gosnmp.MD5
	case "sha":
		return gosnmp.SHA
	default:
		return gosnmp.NoAuth
	}
}

func mapPrivProto(s string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToLower(s) {
	case "des":
		return gosnmp.DES
	case "aes":
		return gosnmp.AES
	default:
		return gosnmp.NoPriv
	}
}
