package fresh

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Keep your dot files fresh"
	MsgInstallShort    = "Build the shell environment from your .freshrc"
	MsgShowShort       = "Show the entries declared in your .freshrc"
	MsgConfigShort     = "Manage fresh configuration"
	MsgConfigInitShort = "Write a default configuration file"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Status messages
	MsgInstallDone     = "Your shell has been freshened up."
	MsgInstallSummary  = "%d entries, %d build files, %d links\n"
	MsgAdvisoryItem    = "  note: %s\n"
	MsgConfigWritten   = "Wrote %s\n"
	MsgShowEntryFormat = "%s:%d\t%s\n"

	// Error messages
	MsgErrInitPaths   = "failed to initialize paths: %w"
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrInstall     = "failed to build shell environment: %w"
	MsgErrShowEntries = "failed to read entries: %w"
	MsgErrWriteConfig = "failed to write configuration: %w"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat  = "Output format (text or yaml)"
)

// Long messages
const (
	MsgRootLong = `fresh builds a single shell environment out of configuration declared
in your ~/.freshrc. Sources can live in your local dot files checkout
or in any git repository, and are concatenated, copied, or linked into
~/.fresh/build in one atomic pass.`

	MsgInstallLong = `Install reads your .freshrc, fetches any missing source repositories,
and rebuilds ~/.fresh/build from scratch. The previous build is kept
as ~/.fresh/build.old and the new tree is published atomically, so a
failed run never leaves you with a half-built environment.`

	MsgShowLong = `Show sources your .freshrc and prints each entry as it was understood,
including inherited options. Nothing is fetched or built.`

	MsgConfigInitLong = `Write a configuration file with default values to the standard
location (or the path given as an argument). Refuses to overwrite an
existing file.`

	MsgUsageTemplate = `{{boldUpper "Usage"}}:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "Aliases"}}:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "Examples"}}:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{boldUpper "Commands"}}:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "Flags"}}:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "Global Flags"}}:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use {{bold (printf "%s [command] --help" .CommandPath)}} for more information about a command.{{end}}
`

	MsgCompletionLong = `To load completions:

Bash:
  $ source <(fresh completion bash)

Zsh:
  $ fresh completion zsh > "${fpath[1]}/_fresh"

Fish:
  $ fresh completion fish | source

PowerShell:
  PS> fresh completion powershell | Out-String | Invoke-Expression`
)
