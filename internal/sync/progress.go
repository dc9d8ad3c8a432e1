package sync

// Run phases, in execution order.
const (
	PhaseSeeding              = "seeding"
	PhaseCollecting           = "collecting"
	PhaseResolvingAllergens   = "resolving_allergens"
	PhaseResolvingIngredients = "resolving_ingredients"
	PhaseAssembling           = "assembling_menu_items"
	PhaseFinalizing           = "finalizing"
	PhaseDone                 = "done"
)

// ProgressEvent is a point-in-time snapshot published as a run advances.
// Observation only; sinks cannot influence the run.
type ProgressEvent struct {
	Phase          string `json:"phase"`
	ItemsProcessed int    `json:"itemsProcessed"`
	ItemsCreated   int    `json:"itemsCreated"`
	ItemsFailed    int    `json:"itemsFailed"`
	Message        string `json:"message,omitempty"`
}

// ProgressSink receives run progress events. Implementations must not
// block; the orchestrator publishes synchronously.
type ProgressSink interface {
	Publish(event ProgressEvent)
}

// SinkFunc adapts a function to the ProgressSink interface.
type SinkFunc func(event ProgressEvent)

// Publish calls f.
func (f SinkFunc) Publish(event ProgressEvent) {
	f(event)
}
