package telnet

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/ispmon/netquery/types"
)

// DefaultTimeout covers the entire phase sequence of one exchange.
const DefaultTimeout = 30 * time.Second

// DefaultPort is the Telnet port used when the equipment record carries none.
const DefaultPort = 23

// Telnet protocol bytes (RFC 854). Only enough of the protocol to refuse
// option negotiation the device initiates.
const (
	cmdSE   = 240
	cmdSB   = 250
	cmdWILL = 251
	cmdWONT = 252
	cmdDO   = 253
	cmdDONT = 254
	cmdIAC  = 255
)

// Run logs in and executes one command through the four-phase handshake.
// A single deadline bounds the whole sequence; on expiry the socket is
// destroyed and an error returned. If the peer closes the socket before the
// command completed, an error is returned as well.
func Run(target types.EquipmentTarget, command string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	port := target.Port
	if port <= 0 {
		port = DefaultPort
	}
	addr := fmt.Sprintf("%s:%d", target.Address, port)

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", fmt.Errorf("telnet dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return "", fmt.Errorf("telnet deadline %s: %w", addr, err)
	}

	machine := NewMachine(target.Username, target.Password, command)
	buf := make([]byte, 4096)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			clean, replies := negotiate(buf[:n])
			if len(replies) > 0 {
				if _, werr := conn.Write(replies); werr != nil {
					return "", fmt.Errorf("telnet negotiate %s: %w", addr, werr)
				}
			}
			for _, line := range machine.Feed(clean) {
				if _, werr := conn.Write([]byte(line + "\r\n")); werr != nil {
					return "", fmt.Errorf("telnet send %s: %w", addr, werr)
				}
			}
			if machine.Done() {
				_, _ = conn.Write([]byte("exit\r\n"))
				return machine.Output(), nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("telnet %s: connection closed before command completion (phase %d)", addr, machine.Phase())
			}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return "", fmt.Errorf("telnet %s: timed out in phase %d", addr, machine.Phase())
			}
			return "", fmt.Errorf("telnet read %s: %w", addr, err)
		}
	}
}

// negotiate strips Telnet command sequences from a chunk and produces the
// refusals for any options the device requested: DO is answered with WONT,
// WILL with DONT, and subnegotiation blocks are discarded.
func negotiate(data []byte) (clean, replies []byte) {
	clean = make([]byte, 0, len(data))

	for i := 0; i < len(data); i++ {
		if data[i] != cmdIAC {
			clean = append(clean, data[i])
			continue
		}
		if i+1 >= len(data) {
			break
		}
		switch data[i+1] {
		case cmdIAC:
			// Escaped 0xFF data byte.
			clean = append(clean, cmdIAC)
			i++
		case cmdDO:
			if i+2 < len(data) {
				replies = append(replies, cmdIAC, cmdWONT, data[i+2])
			}
			i += 2
		case cmdWILL:
			if i+2 < len(data) {
				replies = append(replies, cmdIAC, cmdDONT, data[i+2])
			}
			i += 2
		case cmdDONT, cmdWONT:
			i += 2
		case cmdSB:
			// Skip subnegotiation through IAC SE.
			j := i + 2
			for ; j+1 < len(data); j++ {
				if data[j] == cmdIAC && data[j+1] == cmdSE {
					j++
					break
				}
			}
			i = j
		default:
			// Two-byte command (NOP, GA, ...).
			i++
		}
	}

	return clean, replies
}
