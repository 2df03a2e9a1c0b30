// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/ifctrack/ifctrack/internal/config"
)

// newSchemaFlag returns a fresh --schema flag. Flags keep parsed state, so
// every command gets its own.
func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the row schema",
		HideDefault: true,
	}
}

func newTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewGlobalFlags returns the listing flags shared by every command that
// renders rows.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show local timestamps",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:   "padding",
			Usage:  "spaces between text columns",
			Value:  2,
			Hidden: true,
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewAWSFlags returns the flags that configure the S3 client used for
// s3:// models and output locations.
func NewAWSFlags() []cli.Flag {
	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile("aws", config.Config.Source, &cli.StringFlag{
			Name:  "profile",
			Usage: "AWS shared config profile",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("IFCTRACK_AWS_PROFILE"),
				cli.EnvVar("AWS_PROFILE"),
			),
		}),
		NameSpacedValueChainFlagFromConfigFile("aws", config.Config.Source, &cli.StringFlag{
			Name:  "region",
			Usage: "AWS region",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("IFCTRACK_AWS_REGION"),
				cli.EnvVar("AWS_REGION"),
			),
		}),
		NameSpacedValueChainFlagFromConfigFile("aws", config.Config.Source, &cli.StringFlag{
			Name:  "endpoint",
			Usage: "S3 endpoint URL for S3 compatible stores",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("IFCTRACK_S3_ENDPOINT"),
			),
		}),
	}
}

// NewCategoryFlag constructs the --category flag, namespaced to a command
// and the config file.
func NewCategoryFlag(ns string, value string) *cli.StringFlag {
	return NameSpacedValueChainFlagFromConfigFile(ns, config.Config.Source, &cli.StringFlag{
		Name:  "category",
		Usage: "IFC class whose instances are compared",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("IFCTRACK_CATEGORY"),
		),
		Value: value,
		Validator: func(value string) error {
			return FlagValidators(value, CategoryValidator)
		},
	})
}

// NewCompareFlag constructs the --compare flag selecting the tracked value.
func NewCompareFlag(ns string, value string) *cli.StringFlag {
	return NameSpacedValueChainFlagFromConfigFile(ns, config.Config.Source, &cli.StringFlag{
		Name:  "compare",
		Usage: "tracked value: Pset.Property, pset:Pset.Property or attr:Name",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("IFCTRACK_COMPARE"),
		),
		Value: value,
		Validator: func(value string) error {
			return FlagValidators(value, CompareValidator)
		},
	})
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	flag.Sources.Chain = append(flag.Sources.Chain, configSources(ns, path, flag.Name)...)
	return flag
}

// configSources looks a flag up as ns.name, then name, in the config file.
func configSources(ns string, path string, name string) []cli.ValueSource {
	var chain []cli.ValueSource
	if ns != "" {
		chain = append(chain, yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)))
	}
	return append(chain, yaml.YAML(name, altsrc.StringSourcer(path)))
}

// pathHas checks if the given executable is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
