package estimator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// SageEstimator queries the lattice estimator through a SageMath process.
// ScriptDir must contain a script defining
// security_level_l2(n, q, length_bound, m) and security_level_linf(n, q, length_bound, m).
type SageEstimator struct {
	// Binary is the sage executable. Defaults to "sage".
	Binary string
	// ScriptDir is the directory of estimate.py.
	ScriptDir string
}

// Command returns the sage command line evaluating s.
func (e SageEstimator) Command(s SIS) []string {
	binary := e.Binary
	if binary == "" {
		binary = "sage"
	}

	fn := "security_level_l2"
	if s.Norm == Linf {
		fn = "security_level_linf"
	}

	script := fmt.Sprintf("load(%q); print(%s(%d, %d, %v, %d))",
		filepath.Join(e.ScriptDir, "estimate.py"), fn, s.N, s.Q, s.LengthBound, s.M)
	return []string{binary, "-c", script}
}

// SecurityLevel implements [Estimator].
func (e SageEstimator) SecurityLevel(ctx context.Context, s SIS) (float64, error) {
	args := e.Command(s)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("sage: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return ParseSecurityLevel(stdout.String())
}

// ParseSecurityLevel parses the last non-empty line of the estimator output.
// The estimator logs intermediate results before the final value.
func ParseSecurityLevel(out string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	lambda, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing estimator output %q: %w", last, err)
	}
	return lambda, nil
}
