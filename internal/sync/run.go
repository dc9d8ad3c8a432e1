package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kitchensync/internal/catalog"
	"kitchensync/internal/logger"
	"kitchensync/internal/models"
	"kitchensync/internal/store"
)

// ErrNoCredentials aborts a run before any mutation when the caller has no
// provider credentials.
var ErrNoCredentials = errors.New("no catalog provider credentials configured")

// Options parameterize a single sync run.
type Options struct {
	OwnerID     string
	Credentials catalog.Credentials
	Location    string
	Progress    ProgressSink
}

// Orchestrator drives the end-to-end catalog sync pipeline. It is safe to
// share one Orchestrator across requests; all mutable state lives in the
// per-run syncRun arena.
type Orchestrator struct {
	store    store.Store
	provider catalog.Client
	planner  *Planner
	log      *logger.Logger
}

// NewOrchestrator wires the pipeline to its collaborators.
func NewOrchestrator(st store.Store, provider catalog.Client, planner *Planner, baseLog *logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:    st,
		provider: provider,
		planner:  planner,
		log:      baseLog.With("component", "sync"),
	}
}

// ingredientRequirement is one aggregate ingredient candidate with the
// allergen names heuristically associated to it.
type ingredientRequirement struct {
	Name      string
	Allergens []string
}

// syncRun owns all state for one invocation: the three entity indexes seeded
// from persisted records, the collected candidates, and the report.
// Everything here is discarded when the run returns; concurrent runs are
// isolated by construction.
type syncRun struct {
	ownerID string

	allergenIndex   *EntityIndex
	ingredientIndex *EntityIndex
	menuItemIndex   *EntityIndex

	items      []catalog.Item
	candidates map[string]Candidates

	requiredAllergens   []string
	requiredIngredients []ingredientRequirement

	result   *Result
	progress ProgressSink

	allergens   *AllergenResolver
	ingredients *IngredientResolver
	assembler   *Assembler
}

func (r *syncRun) publish(phase, message string) {
	if r.progress == nil {
		return
	}
	r.progress.Publish(ProgressEvent{
		Phase:          phase,
		ItemsProcessed: r.result.ItemsProcessed,
		ItemsCreated:   r.result.ItemsCreated,
		ItemsFailed:    r.result.ItemsFailed,
		Message:        message,
	})
}

// Run executes the full pipeline: seed the indexes, fetch and collect the
// remote catalog, resolve allergens then ingredients, assemble menu items,
// and finalize the report. Item processing is strictly sequential because
// each resolution may mutate index state that later items depend on.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	started := time.Now()

	if opts.OwnerID == "" {
		return nil, errors.New("sync run requires an owner")
	}
	if opts.Credentials.AccessToken == "" {
		return nil, ErrNoCredentials
	}

	log := o.log.With("owner", opts.OwnerID)
	run := &syncRun{
		ownerID:         opts.OwnerID,
		allergenIndex:   NewEntityIndex(),
		ingredientIndex: NewEntityIndex(),
		menuItemIndex:   NewEntityIndex(),
		candidates:      make(map[string]Candidates),
		result:          NewResult(),
		progress:        opts.Progress,
	}
	run.allergens = NewAllergenResolver(run.allergenIndex, o.store, opts.OwnerID, run.result, log)
	run.ingredients = NewIngredientResolver(run.ingredientIndex, o.store, opts.OwnerID, run.allergens, run.result, log)
	run.assembler = NewAssembler(run.menuItemIndex, o.store, opts.OwnerID, run.ingredients, run.allergens, run.result, log)

	if err := o.seed(ctx, run, opts); err != nil {
		return nil, err
	}

	o.collect(ctx, run)
	o.resolveAllergens(ctx, run)
	o.resolveIngredients(ctx, run)
	o.assemble(ctx, run)
	o.finalize(ctx, run, log, time.Since(started))

	return run.result, nil
}

// seed loads persisted records into the three indexes and fetches the full
// remote catalog. Any failure here is fatal: nothing has been mutated yet.
func (o *Orchestrator) seed(ctx context.Context, run *syncRun, opts Options) error {
	run.publish(PhaseSeeding, "loading existing catalog")

	allergens, err := o.store.ListAllergens(ctx, run.ownerID)
	if err != nil {
		return fmt.Errorf("seeding allergens: %w", err)
	}
	for _, a := range allergens {
		run.allergenIndex.Seed(a.Name, a.ID)
	}

	ingredients, err := o.store.ListIngredients(ctx, run.ownerID)
	if err != nil {
		return fmt.Errorf("seeding ingredients: %w", err)
	}
	for _, i := range ingredients {
		run.ingredientIndex.Seed(i.Name, i.ID)
	}

	menuItems, err := o.store.ListMenuItems(ctx, run.ownerID)
	if err != nil {
		return fmt.Errorf("seeding menu items: %w", err)
	}
	for _, m := range menuItems {
		run.menuItemIndex.Seed(m.Name, m.ID)
	}

	items, err := o.provider.ListCatalog(ctx, opts.Credentials, opts.Location)
	if err != nil {
		return fmt.Errorf("fetching remote catalog: %w", err)
	}
	run.items = items

	o.log.Info("seeded sync run",
		"owner", run.ownerID,
		"allergens", run.allergenIndex.Len(),
		"ingredients", run.ingredientIndex.Len(),
		"menu_items", run.menuItemIndex.Len(),
		"catalog_objects", len(items))
	return nil
}

// collect runs the planner over every catalog item and builds the aggregate
// allergen set and ingredient requirement list, in encounter order so the
// run is deterministic. Pure in-memory; cannot fail.
func (o *Orchestrator) collect(ctx context.Context, run *syncRun) {
	run.publish(PhaseCollecting, "extracting candidates from catalog")

	var (
		allergenSeen    = map[string]bool{}
		allergenNames   []string
		ingredientSeen  = map[string]bool{}
		ingredientNames []string
	)

	for _, item := range run.items {
		if item.Kind != catalog.KindItem && item.Kind != catalog.KindModifierList {
			continue
		}
		cand := o.planner.Plan(ctx, item)
		run.candidates[item.ID] = cand

		for _, name := range cand.AllergenNames {
			key := NormalizeName(name)
			if !allergenSeen[key] {
				allergenSeen[key] = true
				allergenNames = append(allergenNames, name)
			}
		}
		for _, name := range cand.IngredientNames {
			key := NormalizeName(name)
			if !ingredientSeen[key] {
				ingredientSeen[key] = true
				ingredientNames = append(ingredientNames, name)
			}
		}
	}

	assoc := AssociateAllergens(ingredientNames, allergenNames)
	run.requiredAllergens = allergenNames
	for _, name := range ingredientNames {
		run.requiredIngredients = append(run.requiredIngredients, ingredientRequirement{
			Name:      name,
			Allergens: assoc[name],
		})
	}
}

// resolveAllergens works through the aggregate allergen set. Entries are
// independent; one failure never stops the loop.
func (o *Orchestrator) resolveAllergens(ctx context.Context, run *syncRun) {
	run.publish(PhaseResolvingAllergens, fmt.Sprintf("resolving %d allergens", len(run.requiredAllergens)))
	for _, name := range run.requiredAllergens {
		run.allergens.Resolve(ctx, name)
	}
}

// resolveIngredients works through the aggregate ingredient requirements.
func (o *Orchestrator) resolveIngredients(ctx context.Context, run *syncRun) {
	run.publish(PhaseResolvingIngredients, fmt.Sprintf("resolving %d ingredients", len(run.requiredIngredients)))
	for _, req := range run.requiredIngredients {
		run.ingredients.Resolve(ctx, req.Name, req.Allergens)
	}
}

// assemble processes every Item-kind catalog entry. Each item runs inside
// its own recovery scope so one bad record cannot abort the batch.
func (o *Orchestrator) assemble(ctx context.Context, run *syncRun) {
	run.publish(PhaseAssembling, "assembling menu items")

	for _, item := range run.items {
		if item.Kind != catalog.KindItem {
			continue
		}
		run.result.ItemsProcessed++

		created, err := o.assembleOne(ctx, run, item)
		if err != nil {
			name := item.Name
			if name == "" {
				name = item.ID
			}
			run.result.RecordFailure(name, err)
			o.log.Warn("menu item sync failed", "owner", run.ownerID, "item", name, "error", err)
			continue
		}
		if created {
			run.result.ItemsCreated++
		}
	}
}

// assembleOne isolates a single assembly call, converting panics into
// per-item failures.
func (o *Orchestrator) assembleOne(ctx context.Context, run *syncRun, item catalog.Item) (created bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			created = false
			err = fmt.Errorf("panic during assembly: %v", rec)
		}
	}()
	return run.assembler.Assemble(ctx, item, run.candidates[item.ID])
}

// finalize computes the outcome, appends the audit row, and touches the
// owner's last-synced marker. Bookkeeping failures are logged, not fatal:
// the caller still gets the report.
func (o *Orchestrator) finalize(ctx context.Context, run *syncRun, log *logger.Logger, elapsed time.Duration) {
	run.publish(PhaseFinalizing, "writing audit log")
	run.result.Finalize(elapsed.Milliseconds())

	status := models.SyncStatusSuccess
	if run.result.ItemsFailed > 0 {
		status = models.SyncStatusPartial
	}

	audit := &models.SyncAudit{
		OwnerID:        run.ownerID,
		Kind:           "menu_items",
		Status:         status,
		ItemsProcessed: run.result.ItemsProcessed,
		ItemsCreated:   run.result.ItemsCreated,
		ItemsFailed:    run.result.ItemsFailed,
		ErrorSummary:   summarizeErrors(run.result.Errors),
		DurationMs:     run.result.DurationMs,
		CompletedAt:    time.Now().UTC(),
	}
	if err := o.store.AppendAudit(ctx, audit); err != nil {
		log.Error("failed to append sync audit", "error", err)
	}
	if err := o.store.TouchLastSynced(ctx, run.ownerID, time.Now().UTC()); err != nil {
		log.Error("failed to update last-synced marker", "error", err)
	}

	log.Info("sync run complete",
		"status", status,
		"processed", run.result.ItemsProcessed,
		"created", run.result.ItemsCreated,
		"failed", run.result.ItemsFailed,
		"duration_ms", run.result.DurationMs)
	run.publish(PhaseDone, "")
}

// summarizeErrors joins the first few error messages for the audit row.
func summarizeErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	limit := len(errs)
	if limit > 5 {
		limit = 5
	}
	summary := strings.Join(errs[:limit], "; ")
	if len(errs) > limit {
		summary = fmt.Sprintf("%s (and %d more)", summary, len(errs)-limit)
	}
	return summary
}
