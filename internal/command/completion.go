// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/dnos-kdev/internal/meta"
)

const bashCompletionScript = `# bash completion for dnos-kdev
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_dnos_kdev()
{
    local cur prev cmd i
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    local root="--dry-run -n --runtime --verbose --help --version"

    # The subcommand is the first word that is not a root flag or its value.
    cmd=""
    for (( i=1; i < COMP_CWORD; i++ )); do
        case "${COMP_WORDS[i]}" in
            kpatch-build|completion) cmd=${COMP_WORDS[i]}; break ;;
        esac
    done

    if [[ -z "$cmd" ]]; then
        if [[ "$prev" == "--runtime" ]]; then
            COMPREPLY=( $(compgen -W "docker podman" -- "$cur") )
            return 0
        fi
        COMPREPLY=( $(compgen -W "kpatch-build completion $root" -- "$cur") )
        return 0
    fi

    case "$cmd" in
        kpatch-build)
            case "$prev" in
                --distro|-d)
                    COMPREPLY=( $(compgen -W "focal bionic" -- "$cur") )
                    return 0
                    ;;
                --format)
                    COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
                    return 0
                    ;;
                --source|-s|--output|-o|--docker-root)
                    COMPREPLY=( $(compgen -o dirnames -- "$cur") )
                    return 0
                    ;;
            esac
            local opts="$root --distro -d --docker-root --image --pull --no-cache --build-arg --source -s --output -o --jobs -j --name --debug --skip-cleanup --env -e --no-cache-mount --format --upload --aws-region --aws-profile --s3-endpoint"
            if [[ "$cur" == -* ]]; then
                COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
                return 0
            fi
            # Patches are the positional arguments.
            COMPREPLY=( $(compgen -f -X '!*.@(patch|diff)' -- "$cur") $(compgen -o dirnames -- "$cur") )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
    esac
}

complete -F _dnos_kdev dnos-kdev
`

const zshCompletionScript = `#compdef dnos-kdev

_dnos_kdev() {
  local -a cmds
  cmds=(
    'kpatch-build:build a kpatch livepatch module in a distro container'
    'completion:generate shell completion script'
  )

  local -a root
  root=(
    '(-n --dry-run)'{-n,--dry-run}'[print the container commands instead of running them]'
    '--runtime[container runtime binary]:runtime:(docker podman)'
    '--verbose[log at debug level]'
    '(-v --version)'{-v,--version}'[version info]'
  )

  local curcontext="$curcontext" state line
  _arguments -C \
    $root \
    '1: :->cmd' \
    '*:: :->args'

  case $state in
    cmd)
      _describe -t commands 'dnos-kdev commands' cmds
      ;;
    args)
      case $words[1] in
        kpatch-build)
          _arguments \
            $root \
            '(-d --distro)'{-d,--distro}'[target distro]:distro:(focal bionic)' \
            '--docker-root[build context directory]:dir:_directories' \
            '--image[image tag]:image' \
            '--pull[always pull the base image]' \
            '--no-cache[build without the layer cache]' \
            '*--build-arg[build argument]:KEY=VALUE' \
            '(-s --source)'{-s,--source}'[kernel source tree]:dir:_directories' \
            '(-o --output)'{-o,--output}'[module output directory]:dir:_directories' \
            '(-j --jobs)'{-j,--jobs}'[parallel make jobs]:jobs' \
            '--name[module name]:name' \
            '--debug[kpatch-build --debug]' \
            '--skip-cleanup[keep scratch files]' \
            '*'{-e,--env}'[container environment]:KEY=VALUE' \
            '--no-cache-mount[do not mount the kpatch cache]' \
            '--format[report format]:format:(text json yaml)' \
            '--upload[upload target]:s3 url' \
            '--aws-region[AWS region]:region' \
            '--aws-profile[AWS profile]:profile' \
            '--s3-endpoint[S3 endpoint URL]:url' \
            '*:patch:_files -g "*.(patch|diff)"'
          ;;
        completion)
          _arguments '1: :((bash zsh))'
          ;;
      esac
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _dnos_kdev dnos-kdev
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := resultWriter(GetMeta(cmd))
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	case "":
		return usageError(ctx, cmd, fmt.Errorf("cannot detect shell; pass bash or zsh"))
	default:
		return usageError(ctx, cmd, fmt.Errorf("unsupported shell %q: must be bash or zsh", shell))
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "dnos-kdev completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		OnUsageError: OnUsageError,
		Action:       CompletionCommandAction,
	}
}
