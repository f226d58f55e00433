// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sampleconfig

// FileContents is a string containing the commented example config for
// eccgamed.
const FileContents = `[Application Options]

; ------------------------------------------------------------------------------
; Data settings
; ------------------------------------------------------------------------------

; The directory to store data such as the challenge database.  The default is
; ~/.eccgamed/data on POSIX OSes, $LOCALAPPDATA/Eccgamed/data on Windows, and
; ~/Library/Application Support/Eccgamed/data on macOS.  Environment variables
; are expanded so they may be used.  NOTE: Windows environment variables are
; typically %VARIABLE%, but they must be accessed with $VARIABLE here.
; datadir=~/.eccgamed/data                            ; Unix
; datadir=$LOCALAPPDATA/Eccgamed/data                 ; Windows
; datadir=~/Library/Application Support/Eccgamed/data ; macOS

; The database backend used for the challenge store.  Supported values are
; 'leveldb' and 'pebble'.
; dbtype=leveldb


; ------------------------------------------------------------------------------
; Network settings
; ------------------------------------------------------------------------------

; Use testnet address encoding for challenge addresses.
; testnet=1

; Add interfaces/ports for the API server to listen for connections on.  One
; listen address per line.  The default port is 8330 for mainnet and 18330 for
; testnet.  All interfaces are used when no address portion is given.
; All ipv4 interfaces:        listen=:8330
; All ipv4/ipv6 interfaces:   listen=[::]:8330
; Only ipv4 localhost:        listen=127.0.0.1:8330
; Only ipv6 localhost:        listen=[::1]:8330
; Only ipv4 localhost non-standard port 8336:
;   listen=127.0.0.1:8336

; The maximum number of concurrent websocket notification clients.
; maxwebsockets=25


; ------------------------------------------------------------------------------
; TLS settings
; ------------------------------------------------------------------------------

; Serve the API without TLS.  This is only allowed when every listen address
; is a localhost address.
; notls=1

; File containing the certificate file.  A self-signed certificate pair is
; generated on first start when neither file exists.
; tlscert=~/.eccgamed/api.cert

; File containing the certificate key.
; tlskey=~/.eccgamed/api.key


; ------------------------------------------------------------------------------
; Debug
; ------------------------------------------------------------------------------

; Debug logging level.
; Valid levels are {trace, debug, info, warn, error, critical}
; You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set
; log level for individual subsystems.  Use eccgamed --debuglevel=show to list
; available subsystems.
; debuglevel=info

; The listen port for the http profiler.  The profiler is disabled when no
; port is given.
; profile=6061

; The directory to log output.
; logdir=~/.eccgamed/logs

; Disable logging to file.
; nofilelogging=1
`
