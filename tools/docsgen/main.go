// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Command docsgen renders the markdown, man and tldr pages for every
// subcommand described in <docs>/templates/ifctrack.yaml.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Subcommands []Subcommand `yaml:"subcommands"`
	Common      Common       `yaml:"common"`
}

// Common holds flags shared by a group of subcommands. Listing flags apply
// to subcommands that set Listing.
type Common struct {
	Flags   []Flag `yaml:"flags"`
	Listing []Flag `yaml:"listing"`
}

type Subcommand struct {
	ID          string    `yaml:"id"`
	Short       string    `yaml:"short"`
	Description string    `yaml:"description"`
	Usage       string    `yaml:"usage"`
	Listing     bool      `yaml:"listing"`
	Flags       []Flag    `yaml:"flags"`
	Examples    []Example `yaml:"examples"`
	Notes       []string  `yaml:"notes,omitempty"`
}

type Flag struct {
	ID          string `yaml:"id"`
	Syntax      string `yaml:"syntax"`
	Description string `yaml:"description"`
	Default     string `yaml:"default,omitempty"`
	More        string `yaml:"more,omitempty"`
}

type Example struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

type TemplateData struct {
	Subcommand
	Date    string
	Version string
	IDUpper string
}

type Outputs struct {
	Template string
	Folder   string
	Prefix   string
	Suffix   string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen DOCS_DIR")
		os.Exit(1)
	}
	if err := generate(os.Args[1], getVersion(), time.Now()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// generate renders every page beneath docs.
func generate(docs string, version string, now time.Time) error {
	config, err := loadConfig(filepath.Join(docs, "templates", "ifctrack.yaml"))
	if err != nil {
		return err
	}

	types := []Outputs{
		{Template: "ifctrack.md.tmpl", Folder: "commands", Suffix: ".md"},
		{Template: "ifctrack.man.tmpl", Folder: filepath.Join("man", "share", "man1"), Prefix: "ifctrack-", Suffix: ".1"},
		{Template: "ifctrack.tldr.tmpl", Folder: "tldr", Prefix: "ifctrack-", Suffix: ".md"},
	}

	for _, sub := range config.Subcommands {
		sub.Flags = mergeFlags(config.Common, sub)

		metadata := TemplateData{
			Subcommand: sub,
			Date:       now.Format("January 2, 2006"),
			Version:    version,
			IDUpper:    strings.ToUpper(sub.ID),
		}

		for _, t := range types {
			folder := filepath.Join(docs, t.Folder)
			if err := os.MkdirAll(folder, 0755); err != nil {
				return err
			}
			target := filepath.Join(folder, t.Prefix+sub.ID+t.Suffix)
			fmt.Println("Generating", target)
			if err := render(filepath.Join(docs, "templates", t.Template), target, metadata); err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}
		}
	}
	return nil
}

func loadConfig(path string) (Config, error) {
	var config Config
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// mergeFlags returns the subcommand's flags plus the shared ones, sorted by
// id.
func mergeFlags(common Common, sub Subcommand) []Flag {
	merged := append([]Flag{}, common.Flags...)
	if sub.Listing {
		merged = append(merged, common.Listing...)
	}
	merged = append(merged, sub.Flags...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ID < merged[j].ID
	})
	return merged
}

func render(tmplPath, target string, data TemplateData) error {
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return err
	}
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}

	version := strings.TrimSpace(string(out))
	return strings.TrimPrefix(version, "v")
}
