// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Rizato/eccgame-sub003/internal/version"
	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"
)

var (
	eccgamedHomeDir   = btcutil.AppDataDir("eccgamed", false)
	eccctlHomeDir     = btcutil.AppDataDir("eccctl", false)
	defaultConfigFile = filepath.Join(eccctlHomeDir, "eccctl.conf")
	defaultServer     = "localhost"
	defaultCertFile   = filepath.Join(eccgamedHomeDir, "api.cert")
)

// supportedCommands enumerates the commands eccctl accepts along with their
// one-line usage.  The slice keeps the listing order stable.
var supportedCommands = []struct {
	method string
	usage  string
}{
	{"daily", "daily"},
	{"challenge", "challenge \"uuid\""},
	{"solutions", "solutions \"uuid\""},
	{"solve", "solve \"uuid\" \"privkeyhex\""},
	{"save", "save \"uuid\" \"pubkeyhex\" (\"label\")"},
	{"listen", "listen"},
}

// listCommands lists all of the supported commands along with their one-line
// usage.
func listCommands() {
	fmt.Println("Game Server Commands:")
	for _, cmd := range supportedCommands {
		fmt.Println(cmd.usage)
	}
	fmt.Println()
}

// commandUsage displays the usage for a specific command.
func commandUsage(method string) {
	for _, cmd := range supportedCommands {
		if cmd.method != method {
			continue
		}
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintf(os.Stderr, "  %s\n", cmd.usage)
		return
	}
}

// config defines the configuration options for eccctl.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion  bool   `short:"V" long:"version" description:"Display version information and exit"`
	ListCommands bool   `short:"l" long:"listcommands" description:"List all of the supported commands and exit"`
	ConfigFile   string `short:"C" long:"configfile" description:"Path to configuration file"`
	Server       string `short:"s" long:"server" description:"Game server to connect to"`
	TLSCert      string `short:"c" long:"tlscert" description:"Server certificate chain for validation"`
	NoTLS        bool   `long:"notls" description:"Disable TLS"`
	Proxy        string `long:"proxy" description:"Connect via SOCKS5 proxy (eg. 127.0.0.1:9050)"`
	ProxyUser    string `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass    string `long:"proxypass" default-mask:"-" description:"Password for proxy server"`
	TestNet3     bool   `long:"testnet" description:"Connect to testnet"`
}

// normalizeAddress returns addr with the passed default port appended if
// there is not already a port specified.
func normalizeAddress(addr string, useTestNet bool) string {
	_, _, err := net.SplitHostPort(addr)
	if err != nil {
		defaultPort := "8330"
		if useTestNet {
			defaultPort = "18330"
		}
		return net.JoinHostPort(addr, defaultPort)
	}
	return addr
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but the variables can still be expanded via POSIX-style
	// $VARIABLE.
	path = os.ExpandEnv(path)

	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser
	// to otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	path = path[1:]

	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(path, pathSeparators); i != -1 {
		userName = path[:i]
		path = path[i:]
	}

	homeDir := ""
	var u *user.User
	var err error
	if userName == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(userName)
	}
	if err == nil {
		homeDir = u.HomeDir
	}
	// Fallback to CWD if user lookup fails or user has no home directory.
	if homeDir == "" {
		homeDir = "."
	}

	return filepath.Join(homeDir, path)
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options.  Command line options always take precedence.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile: defaultConfigFile,
		Server:     defaultServer,
		TLSCert:    defaultCertFile,
	}

	// Pre-parse the command line options to see if an alternative config
	// file, the version flag, or the list commands flag was specified.  Any
	// errors aside from the help message error can be ignored here since
	// they will be caught by the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "The special parameter `-` "+
				"indicates that a parameter should be read "+
				"from the\nnext unread line from standard input.")
			os.Exit(1)
		} else if ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			fmt.Fprintln(os.Stdout, "")
			fmt.Fprintln(os.Stdout, "The special parameter `-` "+
				"indicates that a parameter should be read "+
				"from the\nnext unread line from standard input.")
			os.Exit(0)
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show options", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.String())
		os.Exit(0)
	}

	// Show the available commands and exit if the associated flag was
	// specified.
	if preCfg.ListCommands {
		listCommands()
		os.Exit(0)
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n",
				err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	// Handle environment variable expansion in the TLS certificate path.
	cfg.TLSCert = cleanAndExpandPath(cfg.TLSCert)

	// Add default port to the server based on the --testnet flag if
	// needed.
	cfg.Server = normalizeAddress(cfg.Server, cfg.TestNet3)

	return &cfg, remainingArgs, nil
}
