// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/m2tools/go-pack/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the gopack cli
func main() {
	cmd.Run(version, commit, date)
}
