// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command defines the CLI command set for ifctrack. It wires flags,
// validators, actions, and shell completion for subcommands.
//
// diff runs the comparison pipeline and writes the reports. annotate writes
// a colored copy of the new model. show prints the detail of one element.
// history and query are listings rendered through the shared attrs, filter,
// sort and output flags.
package command
