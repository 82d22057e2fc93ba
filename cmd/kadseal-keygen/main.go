// Package main provides a command-line tool for managing kadseal node
// identities.
//
// It loads the identity stored under a name in a data directory, generating
// and storing one if none exists, and prints the public key and node id that
// peers will use to reach the node. It can also derive the node id of any
// public key.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/crypto"
)

// CLI configuration
type CLIConfig struct {
	dataDir       string
	name          string
	passphrase    string
	passphraseEnv string
	derive        string
	logLevel      string
	help          bool
}

// parseCLIFlags parses command-line flags and returns the configuration.
func parseCLIFlags(fs *flag.FlagSet, args []string) (*CLIConfig, error) {
	config := &CLIConfig{}

	fs.StringVar(&config.dataDir, "data-dir", "", "Directory holding the encrypted identity")
	fs.StringVar(&config.name, "name", "identity", "Name of the identity within the data directory")
	fs.StringVar(&config.passphrase, "passphrase", "", "Passphrase protecting the identity (prefer -passphrase-env)")
	fs.StringVar(&config.passphraseEnv, "passphrase-env", "KADSEAL_PASSPHRASE", "Environment variable holding the passphrase")
	fs.StringVar(&config.derive, "derive", "", "Print the node id of this hex public key and exit")
	fs.StringVar(&config.logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.BoolVar(&config.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return config, nil
}

// printUsage prints the usage information.
func printUsage(fs *flag.FlagSet, out io.Writer) {
	fmt.Fprintln(out, "kadseal identity tool")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s -data-dir DIR [options]\n", fs.Name())
	fmt.Fprintf(out, "  %s -derive PUBKEY\n", fs.Name())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// validateCLIConfig validates the CLI configuration.
func validateCLIConfig(config *CLIConfig) error {
	if config.derive != "" {
		return nil
	}
	if config.dataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if config.name == "" || strings.ContainsAny(config.name, `/\`) {
		return fmt.Errorf("invalid identity name %q", config.name)
	}
	if config.resolvePassphrase() == "" {
		return fmt.Errorf("passphrase required: set -passphrase or $%s", config.passphraseEnv)
	}
	return nil
}

func (c *CLIConfig) resolvePassphrase() string {
	if c.passphrase != "" {
		return c.passphrase
	}
	if c.passphraseEnv != "" {
		return os.Getenv(c.passphraseEnv)
	}
	return ""
}

// configureLogging applies the requested log level to the standard logger.
func configureLogging(level string) error {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	logrus.SetLevel(parsed)
	logrus.SetOutput(os.Stderr)
	return nil
}

// run executes the command and writes results to out.
func run(config *CLIConfig, out io.Writer) error {
	if config.derive != "" {
		id, err := crypto.DeriveNodeIDHex(config.derive)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "node_id: %s\n", id)
		return nil
	}

	ks, err := crypto.NewKeyStore(config.dataDir, []byte(config.resolvePassphrase()))
	if err != nil {
		return fmt.Errorf("failed to open key store: %w", err)
	}
	defer ks.Close()

	kp, err := ks.LoadOrGenerateKeyPair(config.name)
	if err != nil {
		return fmt.Errorf("failed to load identity: %w", err)
	}
	defer kp.Wipe()

	logrus.WithFields(logrus.Fields{
		"function": "run",
		"data_dir": config.dataDir,
		"name":     config.name,
	}).Info("Identity ready")

	fmt.Fprintf(out, "public_key: %s\n", kp.PublicKeyHex())
	fmt.Fprintf(out, "node_id: %s\n", kp.NodeID())
	return nil
}

// main is the entry point for the identity tool.
func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	config, err := parseCLIFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		os.Exit(2)
	}

	if config.help {
		printUsage(fs, os.Stdout)
		os.Exit(0)
	}

	if err := configureLogging(config.logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := validateCLIConfig(config); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use -help for usage information.\n")
		os.Exit(1)
	}

	if err := run(config, os.Stdout); err != nil {
		logrus.WithError(err).Error("kadseal-keygen failed")
		os.Exit(1)
	}
}
