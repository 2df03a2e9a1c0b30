// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ifctrack/ifctrack/internal/meta"
)

const bashCompletionScript = `# bash completion for ifctrack
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_ifctrack()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "diff annotate show history query completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"
    local aws="--profile --region --endpoint"

    case "$cmd" in
        diff)
            local opts="$common $aws --schema --category --compare --top --format --assign --seed --users --from --to --history --cumulative --list --pick"
            ;;
        annotate)
            local opts="$aws --category --compare --tldr"
            ;;
        show)
            local opts="$aws --unified -u --color -c --ignore --tldr"
            ;;
        history)
            local opts="$common --schema --db --limit --run"
            ;;
        query)
            local opts="$common $aws --schema --category"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --format)
            COMPREPLY=( $(compgen -W "csv xlsx csv,xlsx" -- "$cur") )
            return 0
            ;;
        --assign)
            COMPREPLY=( $(compgen -W "random history" -- "$cur") )
            return 0
            ;;
        --pick)
            COMPREPLY=( $(compgen -o dirnames -- "$cur") )
            return 0
            ;;
        --history|--db)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Positional models and output locations.
    COMPREPLY=( $(compgen -f -X '!*.ifc' -- "$cur") $(compgen -o dirnames -- "$cur") )
    return 0
}

complete -F _ifctrack ifctrack
`

const zshCompletionScript = `#compdef ifctrack

_ifctrack() {
  local -a cmds
  cmds=(
    'diff:compare two model revisions and write change reports'
    'annotate:write a copy of the new model with changes colored'
    'show:show how one element changed between revisions'
    'history:list recorded runs'
    'query:list the elements of a model'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  local -a aws
  aws=(
  '--profile[AWS shared config profile]:profile'
  '--region[AWS region]:region'
  '--endpoint[S3 endpoint URL]:url'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'ifctrack commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    diff)
      _arguments -C \
        $common \
        $aws \
        '--schema[dump schema]' \
        '--category[IFC class to compare]:class' \
        '--compare[tracked value]:compare' \
        '--top[rows in the most modified table]:count' \
        '--format[report formats]:format:(csv xlsx csv,xlsx)' \
        '--assign[user attribution]:assign:(random history)' \
        '--seed[random attribution seed]:seed' \
        '--users[users for random attribution]:users' \
        '--from[attribution range start]:date' \
        '--to[attribution range end]:date' \
        '--history[run history database]:file:_files' \
        '--cumulative[rank over every recorded run]' \
        '--list[render the change log]' \
        '--pick[choose revisions interactively]:directory:_directories' \
        '*:model:_files -g "*.ifc"'
      ;;
    annotate)
      _arguments -C \
        $aws \
        '--category[IFC class to compare]:class' \
        '--compare[tracked value]:compare' \
        '--tldr[show tldr page]' \
        '*:model:_files -g "*.ifc"'
      ;;
    show)
      _arguments -C \
        $aws \
        '(-u --unified)'{-u,--unified}'[unified diff]' \
        '(-c --color)'{-c,--color}'[enable colored output]' \
        '--ignore[property sets to leave out]:psets' \
        '--tldr[show tldr page]' \
        '*:model:_files -g "*.ifc"'
      ;;
    history)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--db[run history database]:file:_files' \
        '--limit[show at most this many runs]:count' \
        '--run[list the changes of one run]:id'
      ;;
    query)
      _arguments -C \
        $common \
        $aws \
        '--schema[dump schema]' \
        '--category[IFC class to list]:class' \
        '::model:_files -g "*.ifc"'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:file:_files'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _ifctrack ifctrack
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(stdout(cmd), bashCompletionScript)
	case "zsh":
		fmt.Fprint(stdout(cmd), zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(stdout(cmd), zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(stdout(cmd), bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: ifctrack completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "ifctrack completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
