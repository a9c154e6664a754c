package output

import "github.com/ecruz165/maven-pnpm-monorepo/internal/build"

// Event is a lifecycle record for structured output streams.
//
// In NDJSON mode, sinks emit Events (one JSON object per line):
//   - run.started
//   - level.started / level.finished
//   - module.started / module.output / module.result
//   - warning
//   - run.finished
//
// JSON mode remains an aggregate of module build results.
type Event struct {
	Type string `json:"type"`

	Module string `json:"module,omitempty"`

	// Level is the 1-based level number for level.* and module.* events.
	// On run.started it carries the total level count.
	Level int `json:"level,omitempty"`

	// Modules lists the level members on level.started and the full build
	// set on run.started.
	Modules []string `json:"modules,omitempty"`

	// Line carries one filtered subprocess output line on module.output.
	Line string `json:"line,omitempty"`

	// Result is attached to module.result events.
	Result *build.Result `json:"result,omitempty"`

	// Warning carries a human-readable diagnostic on warning events.
	Warning string `json:"warning,omitempty"`

	ExitCode int `json:"exit_code,omitempty"`
}
