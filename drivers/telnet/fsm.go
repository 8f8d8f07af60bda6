// Package telnet runs one scripted command against a device over a raw
// Telnet byte stream. Telnet has no structured login handshake, so the
// exchange is modelled as an explicit four-phase state machine fed by
// received chunks: await login prompt, await password prompt, await shell
// prompt, await shell prompt again after the command.
package telnet

import (
	"regexp"
	"strings"
)

// Phase is the login/command handshake position.
type Phase int

const (
	// PhaseLogin awaits the username/login prompt.
	PhaseLogin Phase = iota
	// PhasePassword awaits the password prompt.
	PhasePassword
	// PhaseCommand awaits the shell prompt before the command is sent.
	PhaseCommand
	// PhaseOutput awaits the shell prompt again; its appearance marks
	// command completion.
	PhaseOutput
	// PhaseDone means the command completed and output is final.
	PhaseDone
)

var (
	loginPromptRE    = regexp.MustCompile(`(?i)(login|user\s?name)\s*:\s*$`)
	passwordPromptRE = regexp.MustCompile(`(?i)password\s*:\s*$`)
	shellPromptRE    = regexp.MustCompile(`[#>]\s*$`)
)

// Machine is the handshake state machine. It is fed received bytes and
// answers with the lines to transmit; it never sends credentials before
// observing the matching prompt.
type Machine struct {
	username string
	password string
	command  string

	phase   Phase
	buf     strings.Builder
	scanned int
}

// NewMachine creates a machine for one login+command exchange.
func NewMachine(username, password, command string) *Machine {
	return &Machine{username: username, password: password, command: command}
}

// Phase returns the current handshake phase.
func (m *Machine) Phase() Phase { return m.phase }

// Done reports whether the command completed.
func (m *Machine) Done() bool { return m.phase == PhaseDone }

// Output returns everything received since connection start.
func (m *Machine) Output() string { return m.buf.String() }

// Feed appends a received chunk and returns the lines to transmit, in
// order. A single chunk may advance several phases (banner plus prompts
// arriving together).
func (m *Machine) Feed(chunk []byte) []string {
	m.buf.Write(chunk)

	var sends []string
	for {
		send, advanced := m.step()
		if !advanced {
			return sends
		}
		if send != "" {
			sends = append(sends, send)
		}
	}
}

// step attempts one phase transition against the unscanned tail of the
// buffer. Matching consumes the tail so a prompt never satisfies two phases.
func (m *Machine) step() (send string, advanced bool) {
	tail := strings.TrimRight(m.buf.String()[m.scanned:], " \t")

	switch m.phase {
	case PhaseLogin:
		if !loginPromptRE.MatchString(strings.TrimSpace(tailLine(tail))) {
			return "", false
		}
		m.advance()
		return m.username, true
	case PhasePassword:
		if !passwordPromptRE.MatchString(strings.TrimSpace(tailLine(tail))) {
			return "", false
		}
		m.advance()
		return m.password, true
	case PhaseCommand:
		if !promptAtTail(tail) {
			return "", false
		}
		m.advance()
		return m.command, true
	case PhaseOutput:
		if !promptAtTail(tail) {
			return "", false
		}
		m.advance()
		return "", true
	default:
		return "", false
	}
}

func (m *Machine) advance() {
	m.phase++
	m.scanned = m.buf.Len()
}

// tailLine returns the last line of the unscanned tail.
func tailLine(tail string) string {
	if i := strings.LastIndexByte(tail, '\n'); i >= 0 {
		return tail[i+1:]
	}
	return tail
}

// promptAtTail reports whether the last received line ends in a shell
// prompt character.
func promptAtTail(tail string) bool {
	line := strings.TrimSpace(tailLine(tail))
	if line == "" {
		return false
	}
	return shellPromptRE.MatchString(line)
}
