package host

import "testing"

func TestRunTestsAllCasesPass(t *testing.T) {
	results := RunTests()
	if len(results) != len(selftestCases) {
		t.Fatalf("expected %d results, got %d", len(selftestCases), len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("selftest case %q failed: %s", r.Name, r.Reason)
		}
	}
}
