// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
eccgamed is the elliptic curve game daemon.

It publishes secp256k1 challenge keys, rotates a daily challenge, and accepts
signed solution submissions and exploration bookmarks over a REST and
websocket API.  Challenges are stored in a local database; nothing about a
challenge's private key is ever written down, so correct solutions can only
come from players deriving them.

Usage:

	eccgamed [OPTIONS]

Application Options:

	-V, --version         Display version information and exit
	-C, --configfile=     Path to configuration file
	-A, --appdata=        Path to application home directory
	-b, --datadir=        Directory to store data
	    --logdir=         Directory to log output
	    --nofilelogging   Disable file logging
	    --listen=         Add an interface/port to listen for API connections
	                      (default all interfaces port: 8330, testnet: 18330)
	    --maxwebsockets=  Max number of websocket notification clients
	    --testnet         Use the test network
	    --dbtype=         Database backend to use for challenge storage
	    --profile=        Enable HTTP profiling on given port -- NOTE port
	                      must be between 1024 and 65536
	    --cpuprofile=     Write CPU profile to the specified file
	    --memprofile=     Write mem profile to the specified file
	-d, --debuglevel=     Logging level for all subsystems {trace, debug,
	                      info, warn, error, critical} -- You may also specify
	                      <subsystem>=<level>,<subsystem2>=<level>,... to set
	                      the log level for individual subsystems -- Use show
	                      to list available subsystems
	    --notls           Disable TLS for the API server -- NOTE: This is
	                      only allowed if the API server is bound to localhost
	    --tlscert=        File containing the certificate file
	    --tlskey=         File containing the certificate key
	-s, --service=        Service command {install, remove, start, stop}

Help Options:

	-h, --help            Show this help message
*/
package main
