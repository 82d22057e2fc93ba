package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseArgs(t *testing.T, args ...string) *CLIConfig {
	t.Helper()
	fs := flag.NewFlagSet("kadseal-keygen", flag.ContinueOnError)
	config, err := parseCLIFlags(fs, args)
	require.NoError(t, err)
	return config
}

func TestRunDerive(t *testing.T) {
	config := parseArgs(t, "-derive", "03d18b9d2e81b92839bcf404baca854b9a95e034cd98072563d10653bc6d1a3888")
	require.NoError(t, validateCLIConfig(config))

	var out bytes.Buffer
	require.NoError(t, run(config, &out))
	assert.Equal(t, "node_id: 3a5557aff9b8e37f1d85bdf3b80f90bf64a14eb8\n", out.String())

	config = parseArgs(t, "-derive", "nothex")
	assert.Error(t, run(config, &out))
}

func TestRunGeneratesThenReloads(t *testing.T) {
	dir := t.TempDir()
	config := parseArgs(t, "-data-dir", dir, "-passphrase", "secret", "-name", "node1")
	require.NoError(t, validateCLIConfig(config))

	var first, second bytes.Buffer
	require.NoError(t, run(config, &first))
	require.NoError(t, run(config, &second))

	assert.Equal(t, first.String(), second.String())
	lines := strings.Split(strings.TrimSpace(first.String()), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, "^public_key: 0[23][0-9a-f]{64}$", lines[0])
	assert.Regexp(t, "^node_id: [0-9a-f]{40}$", lines[1])
}

func TestValidateCLIConfig(t *testing.T) {
	t.Setenv("KADSEAL_TEST_PASS", "")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"missing data dir", []string{"-passphrase", "x"}, true},
		{"missing passphrase", []string{"-data-dir", "d", "-passphrase-env", "KADSEAL_TEST_PASS"}, true},
		{"path in name", []string{"-data-dir", "d", "-passphrase", "x", "-name", "../evil"}, true},
		{"valid", []string{"-data-dir", "d", "-passphrase", "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCLIConfig(parseArgs(t, tt.args...))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPassphraseFromEnvironment(t *testing.T) {
	t.Setenv("KADSEAL_TEST_PASS", "from-env")
	config := parseArgs(t, "-data-dir", t.TempDir(), "-passphrase-env", "KADSEAL_TEST_PASS")
	require.NoError(t, validateCLIConfig(config))

	var out bytes.Buffer
	assert.NoError(t, run(config, &out))
}

func TestConfigureLogging(t *testing.T) {
	assert.NoError(t, configureLogging("DEBUG"))
	assert.NoError(t, configureLogging("warn"))
	assert.Error(t, configureLogging("loud"))
}
