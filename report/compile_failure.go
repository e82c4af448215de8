package report

import "fmt"

// ReportCompileFailure prints the message the host prints when the Lowerer
// cleanly aborts a compilation (§7: "unsupported construct" is not an
// exception, it is a reported failure and a fallback to the interpreter).
// closureName identifies the closure whose optimized compile was abandoned;
// reason is the unsupported-construct message the Lowerer produced.
func ReportCompileFailure(closureName, reason string) {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		fmt.Printf("Compilation failed\n")
		if rep.logLevel >= LogLevelWarn {
			fmt.Printf("  closure: %s\n  reason:  %s\n", closureName, reason)
		}
	}
}
