package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the test binary re-runs itself with this set to execute main() in a child process
const helperEnv = "HELLOTCP_RUN_MAIN"

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestMain_ExitsNonZeroWithoutServer(t *testing.T) {
	if os.Getenv(helperEnv) == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMain_ExitsNonZeroWithoutServer$")
	cmd.Env = append(os.Environ(),
		helperEnv+"=1",
		"SERVER_IP=127.0.0.1",
		fmt.Sprintf("TCP_PORT=%d", freePort(t)),
		"PROMETHEUS_ENABLED=false",
	)
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non-zero exit, got %v\n%s", err, out)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), "client_error")
}

func TestMain_ExitsNonZeroOnInvalidConfig(t *testing.T) {
	if os.Getenv(helperEnv) == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMain_ExitsNonZeroOnInvalidConfig$")
	cmd.Env = append(os.Environ(), helperEnv+"=1", "SERVER_IP=not-an-ip")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non-zero exit, got %v\n%s", err, out)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), "Config validation failed")
}
