// Package gpon parses OLT alarm listings and classifies GPON alarm codes
// into operator-facing diagnoses.
package gpon

import (
	"regexp"
	"strings"
	"time"

	"github.com/ispmon/netquery/types"
)

// AlarmListCommand builds the scripted alarm query for one ONU.
func AlarmListCommand(onuID string) string {
	return "show alarm | include " + onuID
}

// alarmLineRE captures the fixed alarm-line fields:
// timestamp, severity, source, status, alarm name, free-text description.
//
//	2024-01-15 10:30:22  CRITICAL  gpon-onu_1/2/3:4  Active  GPON_LOSi  Loss of signal
var alarmLineRE = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s*(.*)$`)

const alarmTimeLayout = "2006-01-02 15:04:05"

// ParseAlarms extracts one OltAlarm per alarm line mentioning the ONU
// identifier. Lines that do not match the fixed format are skipped; an
// empty result is a normal outcome, not an error.
func ParseAlarms(output, onuID string) []types.OltAlarm {
	var alarms []types.OltAlarm

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, onuID) {
			continue
		}
		m := alarmLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ts, err := time.Parse(alarmTimeLayout, normalizeTimestamp(m[1]))
		if err != nil {
			continue
		}
		alarms = append(alarms, types.OltAlarm{
			Timestamp:   ts,
			Severity:    m[2],
			Source:      m[3],
			Status:      m[4],
			Name:        m[5],
			Description: strings.TrimSpace(m[6]),
		})
	}

	return alarms
}

func normalizeTimestamp(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Diagnosis pairs the operator label with a longer explanation.
type Diagnosis struct {
	Label       string
	Description string
}

// UnknownAlarmLabel is used for codes not present in the table. The
// device-reported description is preserved verbatim alongside it.
const UnknownAlarmLabel = "Unknown Alarm"

// diagnosisTable maps GPON alarm codes to their field diagnosis.
var diagnosisTable = map[string]Diagnosis{
	"GPON_LOSi":  {Label: "Fiber break", Description: "Loss of signal: the fiber to the ONU is likely broken or disconnected"},
	"GPON_DGi":   {Label: "Power loss", Description: "Dying gasp: the ONU lost electrical power"},
	"GPON_SUFi":  {Label: "Fiber attenuation", Description: "Signal degraded: startup failure caused by excessive attenuation"},
	"GPON_DOWi":  {Label: "Fiber attenuation", Description: "Drift of window: optical path attenuation outside tolerance"},
	"GPON_LOAMi": {Label: "Fiber attenuation", Description: "Loss of PLOAM: management channel degraded by attenuation"},
	"GPON_LCDGi": {Label: "Fiber attenuation", Description: "Loss of GEM channel delineation: link quality degraded"},
	"GPON_RDi":   {Label: "Communication problem", Description: "Remote defect indication: the ONU reports errored frames"},
}

// DiagnosisFor resolves an alarm code. Unknown codes map to the generic
// unknown label with ok=false so callers can keep the device's own
// description text.
func DiagnosisFor(code string) (Diagnosis, bool) {
	d, ok := diagnosisTable[code]
	if !ok {
		return Diagnosis{Label: UnknownAlarmLabel}, false
	}
	return d, true
}
