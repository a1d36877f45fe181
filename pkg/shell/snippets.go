package shell

import "fmt"

// IntegrationLines returns the two always-present lines at the top of
// the assembled shell file: a guard that prepends the managed bin
// directory to PATH exactly once, and the base-path export consumers
// use to locate the fresh root.
func IntegrationLines(binDir, freshRoot string) []string {
	guard := fmt.Sprintf(
		`__FRESH_BIN_PATH__=%q; [[ ! ":$PATH:" == *":$__FRESH_BIN_PATH__:"* ]] && export PATH="$__FRESH_BIN_PATH__:$PATH"; unset __FRESH_BIN_PATH__`,
		binDir)
	export := fmt.Sprintf(`export FRESH_PATH=%q`, freshRoot)
	return []string{guard, export}
}

// SourceSnippet returns the line users add to their shell profile to
// load the assembled shell file.
func SourceSnippet(buildDir string) string {
	return fmt.Sprintf(`[ -f %q/shell.sh ] && source %q/shell.sh`, buildDir, buildDir)
}
