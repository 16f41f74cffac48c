package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - Diagnostics, written/removed artifacts, final status
//	1 (-v)      - + Progress and run summary
//	2 (-vv)     - + Per-stage executed/reused counts, timing, config loaded
//	3 (-vvv)    - + Per-partition memo decisions
//	4 (-vvvv)   - + Full artifact text

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // Written/removed artifacts, check results
	OutputErrors                           // Diagnostics and errors with hints
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v) - Informational
	OutputProgress // "Loaded 12 packages", watch events
	OutputSummary  // Run summary table

	// Level 2 (-vv) - Detailed
	OutputStages // Per-stage executed/reused counts
	OutputTiming // Run timing
	OutputConfig // Config values loaded/applied

	// Level 3 (-vvv) - Debug
	OutputPartitions // Per-partition memo hits and misses

	// Level 4 (-vvvv) - Full dump
	OutputDataDump // Full artifact contents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputProgress: VerbosityInfo,
	OutputSummary:  VerbosityInfo,

	OutputStages: VerbosityDebug,
	OutputTiming: VerbosityDebug,
	OutputConfig: VerbosityDebug,

	OutputPartitions: VerbosityTrace,

	OutputDataDump: VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}
