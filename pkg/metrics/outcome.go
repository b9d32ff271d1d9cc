package metrics

// Outcome label values shared by the engine counters.
const (
	OutcomeOK               = "ok"
	OutcomeValidation       = "validation_error"
	OutcomeDataInsufficient = "data_insufficient"
	OutcomeSeedUnavailable  = "seed_unavailable"
	OutcomeError            = "error"
)
