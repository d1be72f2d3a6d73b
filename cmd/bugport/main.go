// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-04
// Last Modified: 2026-03-10

// Package main is the entry point for the Bugport CLI.
package main

import (
	"github.com/similigh/bugport/cmd/bugport/commands"
)

func main() {
	commands.Execute()
}
