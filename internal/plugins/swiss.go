// internal/plugins/swiss.go
// Swiss plugin: rounds = floor(log2(N)) + 2 by default, round 1 seeded
// by rating, each subsequent round pairs players by current score while
// avoiding repeat pairings, with a three-tier opponent-search fallback.
package plugins

import (
	"context"
	"database/sql"
	"math"
	"sort"

	"tournament-planner/internal/engine"
	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
	"tournament-planner/internal/utils"
)

// SwissPlugin implements engine.Plugin for KindSwiss.
type SwissPlugin struct {
	repos  *repositories.Container
	rating *engine.RatingEngine
}

// NewSwissPlugin constructs a SwissPlugin.
func NewSwissPlugin(repos *repositories.Container, rating *engine.RatingEngine) *SwissPlugin {
	return &SwissPlugin{repos: repos, rating: rating}
}

func (p *SwissPlugin) Kind() models.TournamentKind { return models.KindSwiss }
func (p *SwissPlugin) IsBasic() bool               { return true }

func (p *SwissPlugin) CanDelete(ctx context.Context, t *models.Tournament) (bool, error) {
	matches, err := p.repos.Match.GetByTournamentID(ctx, t.ID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to check existing matches")
	}
	return len(matches) == 0, nil
}

func (p *SwissPlugin) CanCancel(t *models.Tournament) bool { return true }

func (p *SwissPlugin) IsComplete(ctx context.Context, tx *sql.Tx, t *models.Tournament) (bool, error) {
	d, err := p.repos.SwissData.GetWithTx(tx, t.ID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to load swiss data")
	}
	return d.Complete, nil
}

func (p *SwissPlugin) MatchesRemaining(ctx context.Context, t *models.Tournament) (int, error) {
	d, err := p.repos.SwissData.Get(ctx, t.ID)
	if err != nil {
		return 0, errs.Wrap(errs.Dependency, err, "failed to load swiss data")
	}
	pairings, err := p.repos.SwissData.GetPairingsByRound(ctx, t.ID, d.CurrentRound)
	if err != nil {
		return 0, errs.Wrap(errs.Dependency, err, "failed to load current round pairings")
	}
	remaining := 0
	for _, pr := range pairings {
		if pr.Member2ID == "" {
			continue // bye, auto-resolved
		}
		if pr.MatchID == nil {
			remaining++
		}
	}
	return remaining, nil
}

// defaultRounds is floor(log2(n)) + 2.
func defaultRounds(n int) int {
	if n < 2 {
		return 2
	}
	return int(math.Floor(math.Log2(float64(n)))) + 2
}

// CreateTournament persists the SwissData row and seeds round 1 by rating,
// each rank in the top half paired with the same rank in the bottom half.
func (p *SwissPlugin) CreateTournament(ctx context.Context, tx *sql.Tx, in engine.CreateTournamentInput) error {
	rounds := defaultRounds(len(in.Participants))
	if in.Tournament.Config.SwissRounds != nil {
		rounds = *in.Tournament.Config.SwissRounds
	}
	data := &models.SwissData{TournamentID: in.Tournament.ID, Rounds: rounds, CurrentRound: 1, Complete: false}
	if err := p.repos.SwissData.CreateWithTx(tx, data); err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to create swiss data")
	}

	ordered := make([]*models.TournamentParticipant, len(in.Participants))
	copy(ordered, in.Participants)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ratingOf(ordered[i]) > ratingOf(ordered[j])
	})

	pairings := seedFirstRound(in.Tournament.ID, ordered)
	return p.repos.SwissData.CreatePairingsWithTx(tx, pairings)
}

func ratingOf(p *models.TournamentParticipant) int {
	if p.RatingAtTime != nil {
		return *p.RatingAtTime
	}
	return models.DefaultUnratedValue
}

// seedFirstRound pairs rank i against rank i+half, the standard Swiss
// round-1 split-field seeding; an odd participant count gives the lowest
// rank a bye.
func seedFirstRound(tournamentID string, ordered []*models.TournamentParticipant) []*models.SwissPairing {
	n := len(ordered)
	half := n / 2
	pairings := make([]*models.SwissPairing, 0, half+1)
	for i := 0; i < half; i++ {
		pairings = append(pairings, &models.SwissPairing{
			TournamentID: tournamentID,
			Round:        1,
			Member1ID:    ordered[i].MemberID,
			Member2ID:    ordered[i+half].MemberID,
		})
	}
	if n%2 == 1 {
		pairings = append(pairings, &models.SwissPairing{
			TournamentID: tournamentID,
			Round:        1,
			Member1ID:    ordered[n-1].MemberID,
			Member2ID:    "",
		})
	}
	return pairings
}

// UpdateMatch records a result against an existing pairing's Match slot,
// or edits an already-recorded one.
func (p *SwissPlugin) UpdateMatch(ctx context.Context, tx *sql.Tx, t *models.Tournament, in engine.UpdateMatchInput) (*models.Match, *engine.StateChangeDescriptor, error) {
	d, err := p.repos.SwissData.GetWithTx(tx, t.ID)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Dependency, err, "failed to load swiss data")
	}

	pairings, err := p.repos.SwissData.GetPairingsByRound(ctx, t.ID, d.CurrentRound)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Dependency, err, "failed to load current round pairings")
	}
	pairing := findPairing(pairings, in.MatchOrBracketMatchID, in.Member1ID, in.Member2ID)
	if pairing == nil {
		return nil, nil, errs.NewNotFound("no pairing found for this round matching the given members or match id")
	}
	if pairing.Member2ID == "" {
		return nil, nil, errs.NewValidation("cannot record a result against a bye pairing")
	}

	var match *models.Match
	if pairing.MatchID != nil {
		if err := p.repos.Match.UpdateScoreWithTx(tx, *pairing.MatchID, in.P1Sets, in.P2Sets, in.P1Forfeit, in.P2Forfeit); err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to update match score")
		}
		match, err = p.repos.Match.GetByID(ctx, *pairing.MatchID)
		if err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to reload match")
		}
	} else {
		round := d.CurrentRound
		match = &models.Match{
			ID:           utils.GenerateUUID(),
			TournamentID: &t.ID,
			Round:        &round,
			Member1ID:    pairing.Member1ID,
			Member2ID:    pairing.Member2ID,
			P1Sets:       in.P1Sets,
			P2Sets:       in.P2Sets,
			P1Forfeit:    in.P1Forfeit,
			P2Forfeit:    in.P2Forfeit,
		}
		if err := p.repos.Match.CreateWithTx(tx, match); err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to create match")
		}
		if err := p.repos.SwissData.SetPairingMatchIDWithTx(tx, t.ID, d.CurrentRound, pairing.Member1ID, pairing.Member2ID, match.ID); err != nil {
			return nil, nil, errs.Wrap(errs.Dependency, err, "failed to link pairing to match")
		}
	}

	if !match.HasDeclaredWinner() {
		return match, nil, errs.NewValidation("match has no declared winner: equal sets without a forfeit")
	}
	return match, nil, nil
}

func findPairing(pairings []*models.SwissPairing, id, member1, member2 string) *models.SwissPairing {
	for _, pr := range pairings {
		if pr.MatchID != nil && *pr.MatchID == id {
			return pr
		}
	}
	for _, pr := range pairings {
		if (pr.Member1ID == member1 && pr.Member2ID == member2) || (pr.Member1ID == member2 && pr.Member2ID == member1) {
			return pr
		}
	}
	return nil
}

// OnMatchCompleted checks whether the current round is fully played; if so,
// it either generates the next round or marks the tournament complete.
func (p *SwissPlugin) OnMatchCompleted(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) (*engine.StateChangeDescriptor, error) {
	d, err := p.repos.SwissData.GetWithTx(tx, t.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load swiss data")
	}
	pairings, err := p.repos.SwissData.GetPairingsByRound(ctx, t.ID, d.CurrentRound)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load current round pairings")
	}
	for _, pr := range pairings {
		if pr.Member2ID != "" && pr.MatchID == nil {
			return nil, nil // round still in progress
		}
	}

	if d.CurrentRound >= d.Rounds {
		if err := p.repos.SwissData.AdvanceRoundWithTx(tx, t.ID, d.CurrentRound, true); err != nil {
			return nil, errs.Wrap(errs.Dependency, err, "failed to mark swiss data complete")
		}
		return &engine.StateChangeDescriptor{ShouldMarkComplete: true}, nil
	}

	if err := p.generateNextRound(ctx, tx, t.ID, d); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p *SwissPlugin) OnChildTournamentCompleted(ctx context.Context, tx *sql.Tx, parent, child *models.Tournament) (*engine.StateChangeDescriptor, error) {
	return nil, errs.NewIntegrity("swiss tournaments have no children")
}

// OnMatchRatingCalculation is a no-op: Swiss rates in a single completion
// batch (Mode B), matching Round Robin's timing.
func (p *SwissPlugin) OnMatchRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament, match *models.Match) error {
	return nil
}

func (p *SwissPlugin) OnTournamentCompletionRatingCalculation(ctx context.Context, tx *sql.Tx, t *models.Tournament) error {
	return p.rating.ApplyModeBWithTx(ctx, tx, t)
}

func (p *SwissPlugin) EnrichActiveTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	d, err := p.repos.SwissData.Get(ctx, t.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load swiss data")
	}
	pairings, err := p.repos.SwissData.GetAllPairings(ctx, t.ID)
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to load pairings")
	}
	return map[string]interface{}{"swissData": d, "pairings": pairings, "standings": p.standings(ctx, t.ID, pairings)}, nil
}

func (p *SwissPlugin) EnrichCompletedTournament(ctx context.Context, t *models.Tournament) (map[string]interface{}, error) {
	return p.EnrichActiveTournament(ctx, t)
}

// standings tallies wins across every recorded pairing, including auto-won
// byes, for the read-model score table.
func (p *SwissPlugin) standings(ctx context.Context, tournamentID string, pairings []*models.SwissPairing) map[string]int {
	score := make(map[string]int)
	for _, pr := range pairings {
		if pr.Member2ID == "" {
			score[pr.Member1ID]++
			continue
		}
		if pr.MatchID == nil {
			continue
		}
		m, err := p.repos.Match.GetByID(ctx, *pr.MatchID)
		if err != nil || !m.HasDeclaredWinner() {
			continue
		}
		score[m.WinnerID()]++
	}
	return score
}

// HandlePluginRequest: Swiss has no kind-specific plugin resources beyond
// the automatic round generation OnMatchCompleted already performs.
func (p *SwissPlugin) HandlePluginRequest(ctx context.Context, tx *sql.Tx, t *models.Tournament, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	return nil, errs.NewValidation("swiss tournaments support no plugin actions, got %q", action)
}

// generateNextRound pairs players by current score, preferring an opponent
// never faced before; falling back to the closest score if every
// same-score opponent has already been played; falling back to any
// unpaired opponent (even a repeat) only as a last resort — the three-tier
// search mirrors a standard Swiss pairer's escalation.
func (p *SwissPlugin) generateNextRound(ctx context.Context, tx *sql.Tx, tournamentID string, d *models.SwissData) error {
	participants, err := p.repos.TournamentParticipant.GetByTournamentID(ctx, tournamentID)
	if err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to load participants")
	}
	allPairings, err := p.repos.SwissData.GetAllPairings(ctx, tournamentID)
	if err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to load pairing history")
	}

	played := make(map[string]bool, len(allPairings))
	for _, pr := range allPairings {
		if pr.Member2ID == "" {
			continue
		}
		played[pairKey(pr.Member1ID, pr.Member2ID)] = true
	}

	score := p.standings(ctx, tournamentID, allPairings)
	hadBye := make(map[string]bool)
	for _, pr := range allPairings {
		if pr.Member2ID == "" {
			hadBye[pr.Member1ID] = true
		}
	}

	ids := make([]string, len(participants))
	for i, pt := range participants {
		ids[i] = pt.MemberID
	}
	sort.SliceStable(ids, func(i, j int) bool { return score[ids[i]] > score[ids[j]] })

	nextRound := d.CurrentRound + 1
	paired := make(map[string]bool, len(ids))
	pairings := make([]*models.SwissPairing, 0, len(ids)/2+1)

	for _, a := range ids {
		if paired[a] {
			continue
		}
		opponent := findBestOpponent(a, ids, paired, played, score)
		if opponent == "" {
			pairings = append(pairings, &models.SwissPairing{TournamentID: tournamentID, Round: nextRound, Member1ID: a, Member2ID: ""})
			paired[a] = true
			continue
		}
		pairings = append(pairings, &models.SwissPairing{TournamentID: tournamentID, Round: nextRound, Member1ID: a, Member2ID: opponent})
		paired[a] = true
		paired[opponent] = true
	}

	if err := p.repos.SwissData.CreatePairingsWithTx(tx, pairings); err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to create next round pairings")
	}
	return p.repos.SwissData.AdvanceRoundWithTx(tx, tournamentID, nextRound, false)
}

// findBestOpponent is the three-tier search: same score and unplayed,
// then any unplayed opponent, then any opponent at all (a rematch, as a
// last resort rather than leaving two players unpaired).
func findBestOpponent(player string, ordered []string, paired, played map[string]bool, score map[string]int) string {
	for _, o := range ordered {
		if o == player || paired[o] {
			continue
		}
		if score[o] == score[player] && !played[pairKey(player, o)] {
			return o
		}
	}
	for _, o := range ordered {
		if o == player || paired[o] {
			continue
		}
		if !played[pairKey(player, o)] {
			return o
		}
	}
	for _, o := range ordered {
		if o == player || paired[o] {
			continue
		}
		return o
	}
	return ""
}
