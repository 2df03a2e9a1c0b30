// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for ifctrack's user
// configuration. The configuration is a YAML document located in the user's
// configuration directory, typically:
//   - Linux: $XDG_CONFIG_HOME/ifctrack.yaml or $HOME/.config/ifctrack.yaml
//   - macOS: $HOME/Library/Application Support/ifctrack.yaml
//   - Windows: %AppData%/ifctrack.yaml
//
// IFCTRACK_CFG_FILE overrides the location. Keys are dotted paths; when a
// command sets Namespace (e.g. "diff") the namespaced key is tried first, so
// diff.category wins over a top level category.
package config
