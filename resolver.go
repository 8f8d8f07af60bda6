package netquery

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ispmon/netquery/drivers/cli"
	"github.com/ispmon/netquery/drivers/snmp"
	"github.com/ispmon/netquery/types"
	"github.com/ispmon/netquery/vendors/common"
	"github.com/ispmon/netquery/vendors/mikrotik"
)

// walkFunc performs one bounded subtree walk against a target. It follows
// the no-throw transport contract: failures come back as an empty (or
// partial) result, never as an error.
type walkFunc func(target types.EquipmentTarget, profile *types.SnmpProfile, baseOID string, timeout time.Duration) types.WalkResult

// runFunc executes one scripted command on a remote shell.
type runFunc func(target types.EquipmentTarget, command string, timeout time.Duration) (string, error)

// Resolver looks up subscribers' current PPPoE sessions on a concentrator,
// SNMP first with an interactive-shell fallback. Safe for concurrent use;
// no state crosses queries.
type Resolver struct {
	log zerolog.Logger

	walk walkFunc
	run  runFunc

	walkTimeout time.Duration
	runTimeout  time.Duration
}

// NewResolver builds a resolver wired to the real SNMP and SSH drivers.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{
		log:         log,
		walk:        liveWalk(log),
		run:         cli.Run,
		walkTimeout: snmp.DefaultWalkTimeout,
		runTimeout:  cli.DefaultTimeout,
	}
}

// liveWalk opens a fresh session per walk; Walk closes it on every path, so
// each walk owns exactly one session lifecycle.
func liveWalk(log zerolog.Logger) walkFunc {
	return func(target types.EquipmentTarget, profile *types.SnmpProfile, baseOID string, timeout time.Duration) types.WalkResult {
		sess, err := snmp.NewSession(target, profile)
		if err != nil {
			log.Warn().Err(err).Str("equipment", target.Name).Str("oid", baseOID).Msg("snmp session failed")
			return types.WalkResult{}
		}
		return snmp.Walk(sess, baseOID, timeout)
	}
}

// ResolveSessions resolves the current IP address of each requested
// subscriber on the given concentrator. The result maps requested username
// to session info; unresolved usernames are simply absent. The call always
// returns a map — transport failures are logged and treated as "no results
// from this transport".
func (r *Resolver) ResolveSessions(ctx context.Context, equipment types.EquipmentTarget, usernames []string, profile *types.SnmpProfile) map[string]types.PppoeSessionInfo {
	sessions := make(map[string]types.PppoeSessionInfo)
	if equipment.Address == "" || len(usernames) == 0 {
		return sessions
	}

	userWalk, addrWalk, pair := r.probeSNMP(ctx, equipment, profile)
	if pair != nil {
		r.matchSessions(sessions, equipment, *pair, userWalk, addrWalk, usernames)
	}

	// The shell fallback only fires when SNMP produced nothing at all, not
	// per-username: a concentrator that answered for one subscriber has
	// answered authoritatively for the rest.
	if len(sessions) == 0 && ctx.Err() == nil {
		r.resolveViaShell(equipment, usernames, sessions)
	}

	return sessions
}

// probeSNMP tries each OID pair of the vendor catalog in order, walking the
// username and address subtrees concurrently, and stops at the first pair
// whose username walk is non-empty.
func (r *Resolver) probeSNMP(ctx context.Context, equipment types.EquipmentTarget, profile *types.SnmpProfile) (types.WalkResult, types.WalkResult, *types.OidPair) {
	for _, pair := range ProbesFor(equipment.Vendor) {
		if ctx.Err() != nil {
			return nil, nil, nil
		}

		var userWalk, addrWalk types.WalkResult
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			userWalk = r.walk(equipment, profile, pair.UserOID, r.walkTimeout)
		}()
		go func() {
			defer wg.Done()
			addrWalk = r.walk(equipment, profile, pair.AddressOID, r.walkTimeout)
		}()
		wg.Wait()

		if len(userWalk) > 0 {
			r.log.Debug().
				Str("equipment", equipment.Name).
				Str("dialect", pair.Label).
				Int("users", len(userWalk)).
				Msg("snmp dialect produced session data")
			return userWalk, addrWalk, &pair
		}
	}
	return nil, nil, nil
}

// matchSessions joins the username walk against the address walk and fills
// the result map for every requested username with a usable address.
func (r *Resolver) matchSessions(sessions map[string]types.PppoeSessionInfo, equipment types.EquipmentTarget, pair types.OidPair, userWalk, addrWalk types.WalkResult, usernames []string) {
	// Device-reported name (lowercased) -> walk index.
	userByName := make(map[string]string, len(userWalk))
	observed := make([]string, 0, len(userWalk))
	for idx, value := range userWalk {
		name := value
		if pair.StandardIfMIB {
			n, ok := mikrotik.UsernameFromIfDescr(value)
			if !ok {
				continue
			}
			name = n
		}
		userByName[strings.ToLower(name)] = idx
		observed = append(observed, name)
	}

	addrByIndex := addrWalk
	if pair.StandardIfMIB {
		// ipAdEntIfIndex maps IP (walk index) -> interface index (value);
		// invert by decoded value so it joins against the ifDescr indexes.
		inverted := make(types.WalkResult, len(addrWalk))
		for ip, ifIndex := range addrWalk {
			inverted[ifIndex] = ip
		}
		addrByIndex = inverted
	}

	requested := make(map[string]string, len(usernames))
	for _, u := range usernames {
		requested[strings.ToLower(u)] = u
	}

	for lower, original := range requested {
		idx, ok := userByName[lower]
		if !ok {
			continue
		}
		ip, ok := addrByIndex[idx]
		if !ok || !common.IsUsableAddress(ip) {
			continue
		}
		addr := ip
		sessions[original] = types.PppoeSessionInfo{Username: original, IPAddress: &addr}
	}

	// Substring near-misses are logged for operators chasing
	// naming-convention drift; they never influence the result.
	for _, name := range observed {
		lower := strings.ToLower(name)
		if _, ok := requested[lower]; ok {
			continue
		}
		for reqLower, original := range requested {
			if strings.Contains(lower, reqLower) || strings.Contains(reqLower, lower) {
				r.log.Debug().
					Str("equipment", equipment.Name).
					Str("requested", original).
					Str("observed", name).
					Msg("near-miss username on device")
				break
			}
		}
	}
}

// resolveViaShell is the interactive fallback: one vendor listing command
// over SSH, parsed per requested username. Missing credentials short-circuit
// without attempting I/O.
func (r *Resolver) resolveViaShell(equipment types.EquipmentTarget, usernames []string, sessions map[string]types.PppoeSessionInfo) {
	if equipment.Username == "" || equipment.Password == "" {
		return
	}

	probe := probeFor(equipment.Vendor)
	output, err := r.run(equipment, probe.listCommand, r.runTimeout)
	if err != nil {
		r.log.Warn().Err(err).Str("equipment", equipment.Name).Msg("shell session lookup failed")
		return
	}

	for _, username := range usernames {
		if info := probe.parseSession(output, username); info != nil {
			sessions[username] = *info
		}
	}
}
