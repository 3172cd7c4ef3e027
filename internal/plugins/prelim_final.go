// internal/plugins/prelim_final.go
// Preliminary-with-Final compound plugins: snake-draft non-auto-
// qualified players into G round-robin groups; once every group and any
// remaining auto-qualifier is accounted for, extract top finishers plus
// auto-qualifiers into a final child (another Round Robin, or a Playoff).
// The two registered kinds share this single implementation, differing
// only in what kind of tournament the final child is.
package plugins

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"tournament-planner/internal/engine"
	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
	"tournament-planner/internal/utils"
)

// PrelimFinalPlugin implements engine.Plugin for both
// KindPrelimWithFinalRR and KindPrelimWithFinalPlayoff — FinalKind is the
// only thing that differs between the two registrations.
type PrelimFinalPlugin struct {
	repos     *repositories.Container
	kind      models.TournamentKind
	finalKind models.TournamentKind
	registry  engine.Registry
}

// NewPrelimFinalPlugin constructs one of the two compound plugins. Call
// SetRegistry once the full registry (including this plugin) is built —
// the plugin needs it to dispatch child-tournament creation through the
// correct basic-kind plugin.
func NewPrelimFinalPlugin(repos *repositories.Container, kind, finalKind models.TournamentKind) *PrelimFinalPlugin {
	return &PrelimFinalPlugin{repos: repos, kind: kind, finalKind: finalKind}
}

// SetRegistry wires the plugin registry after construction, breaking the
// construction cycle (the registry must already contain this plugin).
func (p *PrelimFinalPlugin) SetRegistry(reg engine.Registry) { p.registry = reg }

func (p *PrelimFinalPlugin) Kind() models.TournamentKind { return p.kind }
func (p *PrelimFinalPlugin) IsBasic() bool               { return false }

func (p *PrelimFinalPlugin) CanDelete(ctx context.Context, t *models.Tournament) (bool, error) {
	children, err := p.repos.Tournament.ListChildren(ctx, t.ID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to list children")
	}
	for _, c := range children {
		ok, err := p.childCanDelete(ctx, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (p *PrelimFinalPlugin) childCanDelete(ctx context.Context, c *models.Tournament) (bool, error) {
	plugin, err := p.registry.Get(c.Kind)
	if err != nil {
		return false, err
	}
	return plugin.CanDelete(ctx, c)
}

func (p *PrelimFinalPlugin) CanCancel(t *models.Tournament) bool { return true }

func (p *PrelimFinalPlugin) IsComplete(ctx context.Context, tx *sql.Tx, t *models.Tournament) (bool, error) {
	final, err := p.findFinalChild(ctx, t.ID)
	if err != nil {
		return false, err
	}
	if final == nil {
		return false, nil
	}
	return final.Status == models.StatusCompleted, nil
}

func (p *PrelimFinalPlugin) MatchesRemaining(ctx context.Context, t *models.Tournament) (int, error) {
	children, err := p.repos.Tournament.ListChildren(ctx, t.ID)
	if err != nil {
		return 0, errs.Wrap(errs.Dependency, err, "failed to list children")
	}
	total := 0
	for _, c := range children {
		plugin, err := p.registry.Get(c.Kind)
		if err != nil {
			return 0, err
		}
		n, err := plugin.MatchesRemaining(ctx, c)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// CreateTournament snake-drafts non-auto-qualified participants into
// NumberOfGroups rating-balanced groups and creates one Round-Robin child
// per group. Auto-qualifiers play no preliminary group; they are folded
// into the final once every group completes.
func (p *PrelimFinalPlugin) CreateTournament(ctx context.Context, tx *sql.Tx, in engine.CreateTournamentInput) error {
	cfg := in.Tournament.Config
	groups := cfg.NumberOfGroups
	if groups < 1 {
		groups = 1
	}

	ordered := make([]*models.TournamentParticipant, len(in.Participants))
	copy(ordered, in.Participants)
	sort.SliceStable(ordered, func(i, j int) bool { return ratingOf(ordered[i]) > ratingOf(ordered[j]) })

	auto := cfg.AutoQualifiers
	if auto > len(ordered) {
		auto = len(ordered)
	}
	grouped := ordered[auto:]

	buckets := snakeDraft(grouped, groups)
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		groupNum := i
		child := &models.Tournament{
			ID:          utils.GenerateUUID(),
			Kind:        models.KindRoundRobin,
			Name:        fmt.Sprintf("%s — Group %d", in.Tournament.Name, i+1),
			OrganizerID: in.Tournament.OrganizerID,
			Status:      models.StatusActive,
			ParentID:    &in.Tournament.ID,
			GroupNumber: &groupNum,
			CreatedAt:   in.Tournament.CreatedAt,
		}
		participants := make([]*models.TournamentParticipant, len(bucket))
		for j, pt := range bucket {
			participants[j] = &models.TournamentParticipant{
				ID:           utils.GenerateUUID(),
				TournamentID: child.ID,
				MemberID:     pt.MemberID,
				RatingAtTime: pt.RatingAtTime,
				CreatedAt:    in.Tournament.CreatedAt,
			}
		}
		if err := p.createChild(ctx, tx, child, participants); err != nil {
			return err
		}
	}
	return nil
}

// snakeDraft distributes ordered (highest-rated first) participants into
// groups 0..g-1 in serpentine order (0,1,..,g-1,g-1,..,1,0,...) so each
// group ends up with a comparable rating spread.
func snakeDraft(ordered []*models.TournamentParticipant, groups int) [][]*models.TournamentParticipant {
	buckets := make([][]*models.TournamentParticipant, groups)
	dir := 1
	g := 0
	for _, pt := range ordered {
		buckets[g] = append(buckets[g], pt)
		g += dir
		if g == groups {
			g = groups - 1
			dir = -1
		} else if g < 0 {
			g = 0
			dir = 1
		}
	}
	return buckets
}

func (p *PrelimFinalPlugin) createChild(ctx context.Context, tx *sql.Tx, t *models.Tournament, participants []*models.TournamentParticipant) error {
	childPlugin, err := p.registry.Get(t.Kind)
	if err != nil {
		return err
	}
	if err := p.repos.Tournament.CreateWithTx(tx, t); err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to create child tournament")
	}
	for _, pt := range participants {
		if err := p.repos.TournamentParticipant.CreateWithTx(tx, pt); err != nil {
			return errs.Wrap(errs.Dependency, err, "failed to enroll child participant")
		}
	}
	return childPlugin.CreateTournament(ctx, tx, engine.CreateTournamentInput{Tournament: t, Participants: participants})
}

// UpdateMatch never runs directly against a compound tournament — results
// are always recorded against its children.
func (p *PrelimFinalPlugin) UpdateMatch(ctx context.Context, tx *sql.Tx, t *models.Tournament, in engine.UpdateMatchInput) (*models.Match, *engine.StateChangeDescriptor, error) {
	return nil, nil, errs.NewValidation("results must be recorded against a group or final child tournament, not the parent")
}

func (p *PrelimFinalPlugin) OnMatchCompleted(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) (*engine.StateChangeDescriptor, error) {
	return nil, nil
}

// OnChildTournamentCompleted fires once a group or the final completes.
// If it's the final, the parent completes with it. If it's a group, it
// checks whether every group has now finished and, if so, builds the
// final's roster and requests its creation via the dispatcher's
// create-final-tournament mechanism.
func (p *PrelimFinalPlugin) OnChildTournamentCompleted(ctx context.Context, tx *sql.Tx, parent, child *models.Tournament) (*engine.StateChangeDescriptor, error) {
	if child.GroupNumber == nil {
		return &engine.StateChangeDescriptor{ShouldMarkComplete: true}, nil
	}

	children, err := p.repos.Tournament.ListChildren(ctx, parent.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to list children")
	}
	for _, c := range children {
		if c.GroupNumber == nil {
			// Final already exists; nothing to do until it completes.
			return nil, nil
		}
		if c.Status != models.StatusCompleted {
			return nil, nil
		}
	}

	finalConfig, err := p.buildFinalConfig(ctx, parent, children)
	if err != nil {
		return nil, err
	}
	return &engine.StateChangeDescriptor{ShouldCreateFinalTournament: true, FinalConfig: finalConfig}, nil
}

// buildFinalConfig extracts the top finisher(s) per group, round-robin
// across groups until FinalSize is reached, plus every auto-qualifier, and
// packages them as the final child's creation input.
func (p *PrelimFinalPlugin) buildFinalConfig(ctx context.Context, parent *models.Tournament, groupChildren []*models.Tournament) (*engine.CreateTournamentInput, error) {
	sort.SliceStable(groupChildren, func(i, j int) bool { return *groupChildren[i].GroupNumber < *groupChildren[j].GroupNumber })

	rankings := make([][]*models.TournamentParticipant, len(groupChildren))
	for i, c := range groupChildren {
		ranked, err := p.rankGroup(ctx, c)
		if err != nil {
			return nil, err
		}
		rankings[i] = ranked
	}

	finalSize := parent.Config.FinalSize
	if finalSize <= 0 {
		finalSize = len(groupChildren) // one per group, at minimum
	}

	seen := make(map[string]bool)
	finalists := make([]*models.TournamentParticipant, 0, finalSize)
	for rank := 0; len(finalists) < finalSize; rank++ {
		added := false
		for _, ranked := range rankings {
			if rank >= len(ranked) {
				continue
			}
			pt := ranked[rank]
			if seen[pt.MemberID] {
				continue
			}
			finalists = append(finalists, pt)
			seen[pt.MemberID] = true
			added = true
			if len(finalists) == finalSize {
				break
			}
		}
		if !added {
			break // every group exhausted before reaching finalSize
		}
	}

	autoQualifiers, err := p.autoQualifiedParticipants(ctx, parent)
	if err != nil {
		return nil, err
	}
	for _, pt := range autoQualifiers {
		if !seen[pt.MemberID] {
			finalists = append(finalists, pt)
			seen[pt.MemberID] = true
		}
	}

	final := &models.Tournament{
		ID:          utils.GenerateUUID(),
		Kind:        p.finalKind,
		Name:        fmt.Sprintf("%s — Final", parent.Name),
		OrganizerID: parent.OrganizerID,
		Status:      models.StatusActive,
		ParentID:    &parent.ID,
		CreatedAt:   parent.CreatedAt,
	}
	participants := make([]*models.TournamentParticipant, len(finalists))
	for i, pt := range finalists {
		participants[i] = &models.TournamentParticipant{
			ID:           utils.GenerateUUID(),
			TournamentID: final.ID,
			MemberID:     pt.MemberID,
			RatingAtTime: pt.RatingAtTime,
			CreatedAt:    parent.CreatedAt,
		}
	}
	return &engine.CreateTournamentInput{Tournament: final, Participants: participants}, nil
}

// autoQualifiedParticipants returns the highest-rated AutoQualifiers
// participants of the parent roster — the same ones CreateTournament
// excluded from every group.
func (p *PrelimFinalPlugin) autoQualifiedParticipants(ctx context.Context, parent *models.Tournament) ([]*models.TournamentParticipant, error) {
	all, err := p.repos.TournamentParticipant.GetByTournamentID(ctx, parent.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load parent roster")
	}
	sort.SliceStable(all, func(i, j int) bool { return ratingOf(all[i]) > ratingOf(all[j]) })
	n := parent.Config.AutoQualifiers
	if n > len(all) {
		n = len(all)
	}
	return all[:n], nil
}

// rankGroup orders a completed group's participants by win count
// (descending), rating as the tiebreaker.
func (p *PrelimFinalPlugin) rankGroup(ctx context.Context, group *models.Tournament) ([]*models.TournamentParticipant, error) {
	participants, err := p.repos.TournamentParticipant.GetByTournamentID(ctx, group.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load group roster")
	}
	matches, err := p.repos.Match.GetByTournamentID(ctx, group.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load group matches")
	}
	wins := make(map[string]int, len(participants))
	for _, m := range matches {
		if m.HasDeclaredWinner() {
			wins[m.WinnerID()]++
		}
	}
	ranked := make([]*models.TournamentParticipant, len(participants))
	copy(ranked, participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		if wins[ranked[i].MemberID] != wins[ranked[j].MemberID] {
			return wins[ranked[i].MemberID] > wins[ranked[j].MemberID]
		}
		return ratingOf(ranked[i]) > ratingOf(ranked[j])
	})
	return ranked, nil
}

// OnMatchRatingCalculation never runs against the compound tournament
// itself — every Match belongs to a child, which rates on its own terms.
func (p *PrelimFinalPlugin) OnMatchRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) error {
	return nil
}

// OnTournamentCompletionRatingCalculation is a no-op: both children
// (groups and the final) already ran their own rating calculation when
// each completed.
func (p *PrelimFinalPlugin) OnTournamentCompletionRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament) error {
	return nil
}

func (p *PrelimFinalPlugin) EnrichActiveTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	children, err := p.repos.Tournament.ListChildren(ctx, t.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to list children")
	}
	return map[string]interface{}{"children": children}, nil
}

func (p *PrelimFinalPlugin) EnrichCompletedTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	return p.EnrichActiveTournament(ctx, t)
}

func (p *PrelimFinalPlugin) findFinalChild(ctx context.Context, parentID string) (*models.Tournament, error) {
	children, err := p.repos.Tournament.ListChildren(ctx, parentID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to list children")
	}
	for _, c := range children {
		if c.GroupNumber == nil {
			return c, nil
		}
	}
	return nil, nil
}

// HandlePluginRequest: the compound plugins expose no kind-specific
// resources of their own beyond the groups/final already reachable as
// regular child tournaments.
func (p *PrelimFinalPlugin) HandlePluginRequest(ctx context.Context, tx *sql.Tx, t *models.Tournament, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	return nil, errs.NewValidation("this tournament kind supports no plugin actions, got %q", action)
}
