// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/medlocator/medlocator/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
