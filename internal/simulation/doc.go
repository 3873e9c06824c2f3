// Package simulation provides a test harness for validating the statistical
// behaviour of the importance experiment end to end.
//
// The harness exercises the real synthetic generator, random forest, sweep
// runner, summary and SQLiteStore. No mocks. Scenarios describe small sweeps
// that finish in seconds; the harness runs them, persists the run, reloads
// the summary table from the store and hands both to property assertions.
//
// Each test gets an isolated SQLite database via t.TempDir() and a sandboxed
// HOME to prevent touching user data.
//
// Usage:
//
//	func TestX1DominatesX3(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:    "dominance",
//	        Rates:   simulation.Rates(0, 1, 0.5),
//	        Repeats: 8,
//	    })
//	    simulation.AssertDominates(t, result, "x1", "x3")
//	}
package simulation
