package observability

import "github.com/rs/zerolog/log"

// LogIterationDebug logs one fixpoint iteration's bookkeeping at debug
// level, matching this codebase's convention (factory.go, the
// executor package) of using the global zerolog logger with
// structured fields rather than a passed-in *zerolog.Logger.
func LogIterationDebug(iteration, openObligations, derived, plansApplied int) {
	log.Debug().
		Int("iteration", iteration).
		Int("open_obligations", openObligations).
		Int("obligations_derived", derived).
		Int("plans_applied", plansApplied).
		Msg("fixpoint: iteration complete")
}

// LogPolicyDebug logs one policy invocation at debug level.
func LogPolicyDebug(policy, obligationID string, outcome string) {
	log.Debug().
		Str("policy", policy).
		Str("obligation_id", obligationID).
		Str("outcome", outcome).
		Msg("obligations: policy invoked")
}

// LogDiagnosticWarn logs a surfaced diagnostic at warn level: expected
// data describing a compile that couldn't fully resolve, not a process
// fault.
func LogDiagnosticWarn(kind, detail string) {
	log.Warn().
		Str("kind", kind).
		Str("detail", detail).
		Msg("compile: diagnostic")
}

// LogNonConvergence logs the terminal non-convergence case.
func LogNonConvergence(iteration, openObligations int) {
	log.Warn().
		Int("iteration", iteration).
		Int("open_obligations", openObligations).
		Msg("compile: fixpoint did not converge within the iteration bound")
}
