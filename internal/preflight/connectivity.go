package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Pinger sends a single reachability probe to host.
type Pinger interface {
	Ping(ctx context.Context, host string) error
}

// SystemPinger shells out to the platform ping command.
type SystemPinger struct {
	Binary string
	Wait   time.Duration
}

// NewSystemPinger returns a pinger sending one packet and waiting up to wait.
func NewSystemPinger(wait time.Duration) *SystemPinger {
	return &SystemPinger{Binary: "ping", Wait: wait}
}

func (p *SystemPinger) Ping(ctx context.Context, host string) error {
	out, err := exec.CommandContext(ctx, p.Binary, pingArgs(runtime.GOOS, p.Wait, host)...).CombinedOutput()
	if err != nil {
		if msg := lastLine(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// pingArgs builds single-packet arguments for goos.
func pingArgs(goos string, wait time.Duration, host string) []string {
	secs := int(wait.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	switch goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(wait.Milliseconds(), 10), host}
	case "darwin", "freebsd", "openbsd", "netbsd":
		return []string{"-c", "1", "-t", strconv.Itoa(secs), host}
	default:
		return []string{"-c", "1", "-W", strconv.Itoa(secs), host}
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// ProbeResult is the outcome for one host.
type ProbeResult struct {
	Host string
	Err  error
}

// Reachable reports whether the probe succeeded.
func (r ProbeResult) Reachable() bool { return r.Err == nil }

// Prober runs reachability probes. Failures are advisory only.
type Prober struct {
	Pinger  Pinger
	Timeout time.Duration
	Logger  *zap.Logger
}

// Probe checks each host in turn and logs one line per host.
func (p *Prober) Probe(ctx context.Context, hosts []string) []ProbeResult {
	p.Logger.Info("Checking connectivity", zap.Int("hosts", len(hosts)))
	results := make([]ProbeResult, 0, len(hosts))
	for _, host := range hosts {
		err := p.probeOne(ctx, host)
		if err != nil {
			p.Logger.Warn("PING FAILED", zap.String("host", host), zap.Error(err))
		} else {
			p.Logger.Info("PING OK", zap.String("host", host))
		}
		results = append(results, ProbeResult{Host: host, Err: err})
	}
	return results
}

func (p *Prober) probeOne(ctx context.Context, host string) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		// Allow the command itself a little longer than its own wait.
		ctx, cancel = context.WithTimeout(ctx, p.Timeout+time.Second)
		defer cancel()
	}
	return p.Pinger.Ping(ctx, host)
}
