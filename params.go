// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/Rizato/eccgame-sub003/address"
)

// params is used to group parameters for various networks such as the main
// network and test networks.
type params struct {
	*address.Params
	apiPort string
}

// mainNetParams contains parameters specific to the main network.  Challenge
// addresses carry the standard pay-to-pubkey-hash version byte, so a solved
// challenge can be checked against any block explorer.
var mainNetParams = params{
	Params:  &address.MainNetParams,
	apiPort: "8330",
}

// testNet3Params contains parameters specific to the test network.  Practice
// deployments use it so the generated addresses are obviously worthless.
var testNet3Params = params{
	Params:  &address.TestNet3Params,
	apiPort: "18330",
}

// activeNetParams is a pointer to the parameters specific to the currently
// active network.
var activeNetParams = &mainNetParams
