// Command pirc is the CLI surface over the PIR core's host-glue operations
// (§6), grounded on bootstrap/cmd/execute.go's olive.NewCLI usage. Since
// this module has no source-language front end, pirc operates on the same
// small hand-built PIR programs host's self-test suite exercises
// (host.Fixtures) rather than parsing files from disk.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ComedicChimera/olive"
	"github.com/pterm/pterm"

	"pirc/config"
	"pirc/host"
	"pirc/ir"
	"pirc/report"
	"pirc/runtime"
	"pirc/util"
)

// version is this module's CLI-reported version, bumped by hand; there is
// no module/project file to read it from (config.FileName carries only
// Lowerer/logging knobs, not a version field).
const version = "0.1.0"

// cfg is loaded once in main before any subcommand runs, the way
// bootstrap/cmd/driver.go loads the module file ahead of dispatching to a
// subcommand.
var cfg config.Config

func main() {
	wd, err := os.Getwd()
	if err != nil {
		report.ReportFatal("unable to determine working directory: %s", err.Error())
	}
	cfg, err = config.Load(wd)
	if err != nil {
		report.ReportFatal("loading %s: %s", config.FileName, err.Error())
	}
	report.InitReporter(cfg.LogLevel)

	cli := olive.NewCLI("pirc", "pirc drives the PIR Lowerer's host-glue operations over hand-built fixtures", true)

	buildCmd := cli.AddSubcommand("build", "lower a fixture and report success or failure", true)
	buildCmd.AddPrimaryArg("fixture", "the name of the fixture to lower", true)

	disasCmd := cli.AddSubcommand("disas", "disassemble a fixture's compiled dispatch table", true)
	disasCmd.AddPrimaryArg("fixture", "the name of the fixture to disassemble", true)
	disasCmd.AddFlag("verbose", "v", "also print the instruction listing")

	evalCmd := cli.AddSubcommand("eval", "dispatch-evaluate a compiled fixture", true)
	evalCmd.AddPrimaryArg("fixture", "the name of the fixture to evaluate", true)

	cli.AddSubcommand("selftest", "run the built-in compiler test suite", false)
	cli.AddSubcommand("version", "print the pirc version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		execBuild(subResult)
	case "disas":
		execDisas(subResult)
	case "eval":
		execEval(subResult)
	case "selftest":
		execSelftest()
	case "version":
		pterm.Info.Println("pirc " + version)
	default:
		pterm.Error.Println("no subcommand given; pass --help for usage")
		os.Exit(1)
	}
}

func newClosureFixture(name string, build func() *ir.Code) *runtime.Closure {
	return runtime.NewClosure(name, build())
}

// fixtureOrExit looks up a fixture by name, printing every known fixture
// name and exiting the process on a miss rather than returning an error a
// caller could forget to check.
func fixtureOrExit(name string) func() *ir.Code {
	fixtures := host.Fixtures()
	if build, ok := fixtures[name]; ok {
		return build
	}

	type named struct {
		name  string
		build func() *ir.Code
	}
	pairs := make([]named, 0, len(fixtures))
	for n, b := range fixtures {
		pairs = append(pairs, named{n, b})
	}
	names := util.Map(pairs, func(p named) string { return p.name })
	sort.Strings(names)

	pterm.Error.Println("unknown fixture: " + name)
	pterm.Info.Println("known fixtures: " + strings.Join(names, ", "))
	os.Exit(1)
	return nil
}

func execBuild(result *olive.ArgParseResult) {
	name, _ := result.PrimaryArg()
	build := fixtureOrExit(name)

	spinner, _ := pterm.DefaultSpinner.Start("lowering " + name)
	cl := newClosureFixture(name, build)
	_, err := host.Compile(cl, cfg.Lower)
	if err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}
	spinner.Success("compiled " + name)
}

func execDisas(result *olive.ArgParseResult) {
	name, _ := result.PrimaryArg()
	build := fixtureOrExit(name)

	cl := newClosureFixture(name, build)
	if _, err := host.Compile(cl, cfg.Lower); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	fmt.Print(host.Disassemble(cl, result.HasFlag("verbose")))
}

// execEval runs rir_eval's dispatch path over a fixture. This module's
// codegen facade only ever produces LLVM IR text (§6's "toward the code
// generator" surface, not an execution backend), so no fixture's compiled
// version carries a runnable NativeFunc; the honest outcome here is the
// same "not rir compiled code" error Eval returns for any closure with no
// matching version, demonstrating the dispatch-then-report-cleanly path
// rather than fabricating a fake executable result.
func execEval(result *olive.ArgParseResult) {
	name, _ := result.PrimaryArg()
	build := fixtureOrExit(name)

	cl := newClosureFixture(name, build)
	if _, err := host.Compile(cl, cfg.Lower); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	value, err := host.Eval(cl, runtime.Context(0), nil, nil)
	if err != nil {
		pterm.Warning.Println(err.Error())
		return
	}
	pterm.Success.Printfln("%s => %v", name, value)
}

func execSelftest() {
	results := host.RunTests()

	names := make([]string, 0, len(results))
	byName := map[string]string{}
	failures := 0
	for _, r := range results {
		names = append(names, r.Name)
		status := "pass"
		if !r.Passed {
			status = "fail: " + r.Reason
			failures++
		}
		byName[r.Name] = status
	}
	sort.Strings(names)

	rows := pterm.TableData{{"case", "result"}}
	for _, n := range names {
		rows = append(rows, []string{n, byName[n]})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if failures > 0 {
		pterm.Error.Printfln("%d of %d cases failed", failures, len(results))
		os.Exit(1)
	}
	pterm.Success.Printfln("%d cases passed", len(results))
}
