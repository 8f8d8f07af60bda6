package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	expect "github.com/google/goexpect"
	"golang.org/x/crypto/ssh"

	"github.com/ispmon/netquery/types"
	"github.com/ispmon/netquery/vendors/common"
)

// DefaultTimeout bounds one whole SSH exchange: dial, login, prompt, command
// and output capture.
const DefaultTimeout = 30 * time.Second

// DefaultPort is the SSH port used when the equipment record carries none.
const DefaultPort = 22

// legacyCiphers and legacyKeyExchanges extend the x/crypto defaults with the
// older algorithms that embedded access gear still negotiates. This is a
// compatibility trade-off for outdated firmware, not a recommendation;
// operators should be aware these connections may use weak crypto.
var (
	legacyCiphers = []string{
		"aes128-ctr", "aes192-ctr", "aes256-ctr",
		"aes128-gcm@openssh.com",
		"aes128-cbc", "aes256-cbc", "3des-cbc",
	}
	legacyKeyExchanges = []string{
		"curve25519-sha256", "curve25519-sha256@libssh.org",
		"ecdh-sha2-nistp256", "ecdh-sha2-nistp384",
		"diffie-hellman-group14-sha256",
		"diffie-hellman-group-exchange-sha256",
		"diffie-hellman-group14-sha1",
		"diffie-hellman-group-exchange-sha1",
		"diffie-hellman-group1-sha1",
	}
)

// Run opens a shell on the target, waits for the first prompt, issues the
// command once, captures output until the prompt reappears, then sends exit
// and closes. A single timeout covers the whole exchange; on expiry the
// connection is torn down and an error returned.
func Run(target types.EquipmentTarget, command string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Some devices only offer keyboard-interactive instead of password auth.
	keyboardInteractive := ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = target.Password
		}
		return answers, nil
	})

	sshConfig := &ssh.ClientConfig{
		User: target.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(target.Password),
			keyboardInteractive,
		},
		Timeout:         timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // field gear has no managed host keys
		Config: ssh.Config{
			Ciphers:      legacyCiphers,
			KeyExchanges: legacyKeyExchanges,
		},
	}

	port := target.Port
	if port <= 0 {
		port = DefaultPort
	}
	addr := fmt.Sprintf("%s:%d", target.Address, port)

	client, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return "", fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	defer client.Close()

	deadline := time.Now().Add(timeout)

	exp, _, err := expect.SpawnSSH(client, timeout,
		expect.Verbose(false),
		expect.CheckDuration(250*time.Millisecond),
	)
	if err != nil {
		return "", fmt.Errorf("ssh spawn shell %s: %w", addr, err)
	}
	defer exp.Close()

	promptRE := PromptFor(string(target.Vendor))

	// First prompt after login banner.
	if _, _, err := exp.Expect(promptRE, time.Until(deadline)); err != nil {
		return "", fmt.Errorf("ssh prompt %s: %w", addr, err)
	}

	// Widen the terminal where the vendor pages output.
	if pager := PagerDisableCommands[strings.ToLower(string(target.Vendor))]; pager != "" {
		if err := exp.Send(pager + "\n"); err == nil {
			_, _, _ = exp.Expect(promptRE, time.Until(deadline))
		}
	}

	if err := exp.Send(command + "\n"); err != nil {
		return "", fmt.Errorf("ssh send %s: %w", addr, err)
	}

	// Next prompt occurrence after the command marks completion.
	output, _, err := exp.Expect(promptRE, time.Until(deadline))
	if err != nil {
		return output, fmt.Errorf("ssh awaiting prompt after %q on %s: %w", command, addr, err)
	}

	_ = exp.Send("exit\n")

	return CleanOutput(output, command, promptRE), nil
}

// CleanOutput strips ANSI sequences, the command echo and trailing prompt
// lines from captured terminal output.
func CleanOutput(output, command string, promptRE *regexp.Regexp) string {
	output = common.StripANSI(output)

	lines := strings.Split(output, "\n")
	var cleaned []string
	for i, line := range lines {
		if i == 0 && strings.Contains(line, command) {
			continue
		}
		if promptRE.MatchString(strings.TrimSpace(line)) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
