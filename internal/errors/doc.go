// Package errors provides coded, human-readable errors for the snapfx CLI.
//
// Runtime errors from pkg/snapfx and pkg/host are typed values meant for
// programs. This package turns them, and configuration and command
// failures, into an *Error carrying:
//   - A unique code (e.g., "E001")
//   - A short message and a longer explanation
//   - An optional file location (config files)
//   - A suggestion on how to fix the problem
//
// # Error Categories
//
//   - runtime: failures reported by the state/effect runtime
//   - config: malformed or invalid configuration files
//   - cli: command-line usage and environment problems
//
// # Usage
//
//	err := errors.New("E120").
//	    WithLocation("snapfx.yaml", 4, 0).
//	    WithSuggestion("demo.interval must be a duration such as 1s")
//
//	fmt.Print(err.Format())
//	// Output:
//	// error[E120]: Configuration parse error
//	//   --> snapfx.yaml:4
//	//   | The configuration file is not valid JSON or YAML.
//	//   = hint: demo.interval must be a duration such as 1s
package errors
