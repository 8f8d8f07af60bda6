package snmp

import (
	"strings"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/ispmon/netquery/types"
)

// DefaultWalkTimeout bounds a whole subtree walk, on top of the per-request
// timeout/retry carried by the session.
const DefaultWalkTimeout = 30 * time.Second

// Walk performs a bulk subtree read rooted at baseOID and always returns
// whatever accumulated: on error or timeout the partial result is handed
// back rather than an error, since callers need partial data under flaky
// field connectivity. The session is closed on every exit path, exactly
// once.
func Walk(g *gosnmp.GoSNMP, baseOID string, timeout time.Duration) types.WalkResult {
	if timeout <= 0 {
		timeout = DefaultWalkTimeout
	}

	results := make(types.WalkResult)
	var mu sync.Mutex

	walkFn := func(pdu gosnmp.SnmpPDU) error {
		value, ok := DecodeVarbind(pdu)
		if !ok || value == "" {
			return nil
		}
		suffix := OidSuffix(pdu.Name, baseOID)
		if suffix == "" {
			return nil
		}
		mu.Lock()
		results[suffix] = value
		mu.Unlock()
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if g.Version == gosnmp.Version1 {
			_ = g.Walk(baseOID, walkFn)
			return
		}
		_ = g.BulkWalk(baseOID, walkFn)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		// Closing the connection unblocks the walker goroutine.
	}

	if g.Conn != nil {
		_ = g.Conn.Close()
	}

	mu.Lock()
	defer mu.Unlock()
	snapshot := make(types.WalkResult, len(results))
	for k, v := range results {
		snapshot[k] = v
	}
	return snapshot
}

// DecodeVarbind turns one PDU into its string form. Protocol error markers
// are skipped; octet strings are decoded with embedded NUL bytes stripped
// and surrounding whitespace trimmed; numeric values are stringified.
func DecodeVarbind(pdu gosnmp.SnmpPDU) (string, bool) {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return "", false
	case gosnmp.OctetString:
		b, ok := pdu.Value.([]byte)
		if !ok {
			return "", false
		}
		s := strings.ReplaceAll(string(b), "\x00", "")
		return strings.TrimSpace(s), true
	case gosnmp.IPAddress, gosnmp.ObjectIdentifier:
		s, ok := pdu.Value.(string)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(s), true
	default:
		if pdu.Value == nil {
			return "", false
		}
		return gosnmp.ToBigInt(pdu.Value).String(), true
	}
}

// OidSuffix computes the index of a walked OID relative to the base OID.
// Returns "" when the OID is not under the base.
func OidSuffix(oid, baseOID string) string {
	oid = strings.TrimPrefix(oid, ".")
	base := strings.TrimPrefix(baseOID, ".")
	if !strings.HasPrefix(oid, base+".") {
		return ""
	}
	return oid[len(base)+1:]
}
