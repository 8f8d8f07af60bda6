package netquery

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ispmon/netquery/drivers/cli"
	"github.com/ispmon/netquery/drivers/telnet"
	"github.com/ispmon/netquery/types"
	"github.com/ispmon/netquery/vendors/gpon"
)

// Diagnosis labels for the two non-alarm outcomes.
const (
	DiagnosisNoAlarms   = "No Active Alarms"
	DiagnosisQueryError = "Query Error"
)

// Diagnoser runs one scripted alarm query against an OLT and classifies the
// result. All failures are reported as a diagnosis value, never returned as
// an error.
type Diagnoser struct {
	log zerolog.Logger

	runSSH    runFunc
	runTelnet runFunc

	timeout time.Duration
}

// NewDiagnoser builds a diagnoser wired to the real SSH and Telnet drivers.
func NewDiagnoser(log zerolog.Logger) *Diagnoser {
	return &Diagnoser{
		log:       log,
		runSSH:    cli.Run,
		runTelnet: telnet.Run,
		timeout:   cli.DefaultTimeout,
	}
}

// Diagnose queries the OLT for alarms mentioning the ONU and suggests a
// root cause. The raw terminal output is kept in the result for operator
// audit, even when classification succeeds.
func (d *Diagnoser) Diagnose(ctx context.Context, olt types.EquipmentTarget, onuID string) types.OltDiagnosis {
	command := gpon.AlarmListCommand(onuID)

	run := d.runSSH
	if olt.Transport == types.TransportTelnet {
		run = d.runTelnet
	}

	if err := ctx.Err(); err != nil {
		return d.queryError(olt, onuID, err)
	}

	raw, err := run(olt, command, d.timeout)
	if err != nil {
		return d.queryError(olt, onuID, err)
	}

	alarms := gpon.ParseAlarms(raw, onuID)
	if len(alarms) == 0 {
		return types.OltDiagnosis{
			Diagnosis:   DiagnosisNoAlarms,
			Description: fmt.Sprintf("no alarms found for ONU %s", onuID),
			RawOutput:   raw,
		}
	}

	// Prefer the first alarm still active; otherwise the first reported.
	chosen := alarms[0]
	for _, a := range alarms {
		if a.Status == types.AlarmStatusActive {
			chosen = a
			break
		}
	}

	diag, known := gpon.DiagnosisFor(chosen.Name)
	description := diag.Description
	if !known {
		// Keep the device's own wording when the code is not in the table.
		description = chosen.Description
	}

	d.log.Debug().
		Str("olt", olt.Name).
		Str("onu", onuID).
		Str("alarm", chosen.Name).
		Str("diagnosis", diag.Label).
		Msg("alarm classified")

	return types.OltDiagnosis{
		AlarmType:   chosen.Severity,
		AlarmCode:   chosen.Name,
		Description: description,
		Diagnosis:   diag.Label,
		RawOutput:   raw,
	}
}

func (d *Diagnoser) queryError(olt types.EquipmentTarget, onuID string, err error) types.OltDiagnosis {
	d.log.Warn().Err(err).Str("olt", olt.Name).Str("onu", onuID).Msg("alarm query failed")
	return types.OltDiagnosis{
		Diagnosis:   DiagnosisQueryError,
		Description: fmt.Sprintf("alarm query failed: %v", err),
		RawOutput:   "",
	}
}
