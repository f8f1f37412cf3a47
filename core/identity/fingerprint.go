package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// namespace scopes the name-based UUIDs so the same host yields a different
// id in unrelated products.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://pricing-detective/device"))

// DefaultMachineIDPaths are the usual locations of a stable machine id
var DefaultMachineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

// HostFingerprinter derives a non-PII id from host characteristics.
// Raw values never leave the process; only the derived UUID does.
type HostFingerprinter struct {
	// MachineIDPaths are read in order; the first non-empty file wins
	MachineIDPaths []string

	// Hostname and HomeDir are replaceable for tests
	Hostname func() (string, error)
	HomeDir  func() (string, error)
	ReadFile func(string) ([]byte, error)
}

// NewHostFingerprinter returns a fingerprinter reading the real host
func NewHostFingerprinter(machineIDPaths []string) *HostFingerprinter {
	if len(machineIDPaths) == 0 {
		machineIDPaths = DefaultMachineIDPaths
	}
	return &HostFingerprinter{
		MachineIDPaths: machineIDPaths,
		Hostname:       os.Hostname,
		HomeDir:        os.UserHomeDir,
		ReadFile:       os.ReadFile,
	}
}

// Fingerprint implements Fingerprinter
func (h *HostFingerprinter) Fingerprint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	signals := map[string]string{
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
		"cpus": fmt.Sprint(runtime.NumCPU()),
	}

	machineID := h.machineID()
	if machineID != "" {
		signals["machine"] = machineID
	}
	if h.Hostname != nil {
		if host, err := h.Hostname(); err == nil && host != "" {
			signals["host"] = host
		}
	}
	if h.HomeDir != nil {
		if home, err := h.HomeDir(); err == nil && home != "" {
			sum := sha256.Sum256([]byte(home))
			signals["home"] = hex.EncodeToString(sum[:8])
		}
	}

	if signals["machine"] == "" && signals["host"] == "" {
		return "", fmt.Errorf("no stable host signal (machine id or hostname) available")
	}

	return uuid.NewSHA1(namespace, canonical(signals)).String(), nil
}

func (h *HostFingerprinter) machineID() string {
	if h.ReadFile == nil {
		return ""
	}
	for _, path := range h.MachineIDPaths {
		data, err := h.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	return ""
}

// canonical renders signals as sorted key=value lines
func canonical(signals map[string]string) []byte {
	keys := make([]string, 0, len(signals))
	for k := range signals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(signals[k])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// StaticFingerprinter returns a fixed, configured identifier
type StaticFingerprinter string

// Fingerprint implements Fingerprinter
func (s StaticFingerprinter) Fingerprint(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", fmt.Errorf("static device id is empty")
	}
	return strings.TrimSpace(string(s)), nil
}

// FingerprinterFunc adapts a function to Fingerprinter
type FingerprinterFunc func(ctx context.Context) (string, error)

// Fingerprint implements Fingerprinter
func (f FingerprinterFunc) Fingerprint(ctx context.Context) (string, error) {
	return f(ctx)
}
