package host

import "pirc/ir"

// Fixtures exposes the self-test suite's hand-built PIR programs by name.
// cmd/pirc's build/disas/eval subcommands operate on these same programs,
// since this module has no source-language front end to parse a real
// input file from (spec §1's explicit non-goal).
func Fixtures() map[string]func() *ir.Code {
	out := make(map[string]func() *ir.Code, len(selftestCases))
	for _, c := range selftestCases {
		out[c.name] = c.build
	}
	return out
}
