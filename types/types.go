// Package types defines the shared data model of the equipment query
// subsystem: target/profile records supplied by the equipment registry and
// the structured results handed back to callers.
package types

import "time"

// Vendor identifies the equipment dialect used for OID probing and output
// parsing.
type Vendor string

const (
	VendorMikrotik Vendor = "mikrotik"
	VendorCisco    Vendor = "cisco"
	VendorHuawei   Vendor = "huawei"
	VendorGeneric  Vendor = "generic"
)

// Transport selects the interactive session protocol for scripted commands.
type Transport string

const (
	TransportSSH    Transport = "ssh"
	TransportTelnet Transport = "telnet"
)

// EquipmentTarget identifies one concentrator or OLT. It is owned by the
// external configuration store and treated as immutable for the duration of
// a query.
type EquipmentTarget struct {
	// Name is a unique identifier for this equipment
	Name string

	// Address is the management IP/hostname
	Address string

	// Port is the management port (if not default)
	Port int

	// Vendor selects the OID catalog and output parsers
	Vendor Vendor

	// Transport is the interactive session protocol (SSH or Telnet)
	Transport Transport

	// Username and Password are the interactive session credentials
	Username string
	Password string
}

// SnmpProfile is a read-only value object describing how to build an SNMP
// session against a target. Unrecognized or absent fields degrade towards
// the none/noAuthNoPriv end of each axis rather than erroring.
type SnmpProfile struct {
	// Version is "1", "2c" or "3"
	Version string

	// Community is the v1/v2c community string (default "public")
	Community string

	// SecurityLevel is the v3 level: noAuthNoPriv, authNoPriv or authPriv
	SecurityLevel string

	// Username is the v3 security name
	Username string

	// AuthProtocol is none, MD5 or SHA
	AuthProtocol   string
	AuthPassphrase string

	// PrivProtocol is none, DES or AES
	PrivProtocol   string
	PrivPassphrase string

	// TimeoutMs and Retries bound each SNMP request (defaults 5000 ms, 1)
	TimeoutMs int
	Retries   int
}

// OidPair is one vendor dialect probe: a username table and the address
// table it is matched against. Order inside a catalog encodes probing
// priority.
type OidPair struct {
	// Label names the dialect in diagnostic logs
	Label string

	// UserOID is the subtree whose values carry session usernames
	UserOID string

	// AddressOID is the subtree whose values carry session IP addresses
	AddressOID string

	// StandardIfMIB marks the interface-description fallback dialect:
	// usernames are wrapped in synthetic <ppp-NAME> interface names and the
	// address table maps IP->ifIndex instead of ifIndex->IP, so it must be
	// inverted before matching.
	StandardIfMIB bool
}

// WalkResult is the outcome of one subtree walk: OID suffix relative to the
// base OID mapped to the decoded varbind value.
type WalkResult map[string]string

// PppoeSessionInfo describes one resolved subscriber session. Fields the
// vendor parsers do not extract stay nil.
type PppoeSessionInfo struct {
	Username   string  `json:"username"`
	IPAddress  *string `json:"ip_address"`
	MACAddress *string `json:"mac_address"`
	Uptime     *string `json:"uptime"`
	Interface  *string `json:"interface"`
}

// OltAlarm is one alarm line reported by an OLT.
type OltAlarm struct {
	Timestamp   time.Time `json:"timestamp"`
	Severity    string    `json:"severity"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// AlarmStatusActive is the status value preferred when classifying.
const AlarmStatusActive = "Active"

// OltDiagnosis is the classified outcome of one alarm query. RawOutput keeps
// the unparsed terminal text for operator audit, even on success.
type OltDiagnosis struct {
	AlarmType   string `json:"alarm_type"`
	AlarmCode   string `json:"alarm_code"`
	Description string `json:"description"`
	Diagnosis   string `json:"diagnosis"`
	RawOutput   string `json:"raw_output"`
}
