// internal/engine/bracket_runtime.go
// Bracket Runtime: initial construction, BYE auto-promotion, winner
// advancement, completion detection.
package engine

import (
	"context"
	"database/sql"

	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
	"tournament-planner/internal/utils"
)

// BracketRuntime drives a single-elimination bracket after construction.
type BracketRuntime struct {
	repos *repositories.Container
}

// NewBracketRuntime constructs a BracketRuntime.
func NewBracketRuntime(repos *repositories.Container) *BracketRuntime {
	return &BracketRuntime{repos: repos}
}

// roundCount returns log2(bracketSize), the number of rounds the bracket has.
func roundCount(bracketSize int) int {
	r := 0
	for size := bracketSize; size > 1; size /= 2 {
		r++
	}
	return r
}

// Construct creates every BracketMatch row for the bracket (round=1 is the
// final; the first round is round=totalRounds), links nextMatchId, and
// auto-promotes every first-round BYE survivor directly into the next
// round's slot without creating a Match row.
func (rt *BracketRuntime) Construct(ctx context.Context, tx *sql.Tx, tournamentID string, layout *FirstRoundLayout) error {
	totalRounds := roundCount(layout.BracketSize)
	// ids[round][position] = bracket match ID, 1-indexed position.
	ids := make(map[int]map[int]string, totalRounds)

	for round := totalRounds; round >= 1; round-- {
		numMatches := matchesInRound(layout.BracketSize, totalRounds, round)
		ids[round] = make(map[int]string, numMatches)
		for pos := 1; pos <= numMatches; pos++ {
			bm := &models.BracketMatch{
				ID:           utils.GenerateUUID(),
				TournamentID: tournamentID,
				Round:        round,
				Position:     pos,
			}
			if round == totalRounds {
				bm.Member1ID = layout.Slots[2*(pos-1)]
				bm.Member2ID = layout.Slots[2*(pos-1)+1]
			}
			if err := rt.repos.BracketMatch.CreateWithTx(tx, bm); err != nil {
				return errs.Wrap(errs.Dependency, err, "failed to create bracket match")
			}
			ids[round][pos] = bm.ID
		}
	}

	// Second phase: link nextMatchId. Position p at round r feeds
	// (round r-1, ceil(p/2)).
	for round := totalRounds; round >= 2; round-- {
		for pos, id := range ids[round] {
			nextPos := (pos + 1) / 2
			nextID := ids[round-1][nextPos]
			if err := rt.repos.BracketMatch.SetNextMatchIDWithTx(tx, id, nextID); err != nil {
				return errs.Wrap(errs.Dependency, err, "failed to link bracket match")
			}
		}
	}

	// BYE auto-promotion: only ever needed at the first round, since the
	// builder guarantees at most one BYE per first-round pair and every
	// later round therefore always has at least one side pending a real
	// result.
	if totalRounds >= 1 {
		if err := rt.promoteFirstRoundByes(tx, tournamentID, layout, ids, totalRounds); err != nil {
			return err
		}
	}
	return nil
}

func matchesInRound(bracketSize, totalRounds, round int) int {
	distanceFromFinal := totalRounds - round
	return bracketSize / pow2(distanceFromFinal+1)
}

func pow2(n int) int {
	v := 1
	for i := 0; i < n; i++ {
		v *= 2
	}
	return v
}

func (rt *BracketRuntime) promoteFirstRoundByes(tx *sql.Tx, tournamentID string, layout *FirstRoundLayout, ids map[int]map[int]string, firstRound int) error {
	if firstRound < 2 {
		return nil // 2-player bracket: the single match is also the final, no promotion possible
	}
	numMatches := layout.BracketSize / 2
	for pos := 1; pos <= numMatches; pos++ {
		slot1 := layout.Slots[2*(pos-1)]
		slot2 := layout.Slots[2*(pos-1)+1]
		isBye := (slot1 == models.BracketSlotBye) != (slot2 == models.BracketSlotBye)
		if !isBye {
			continue
		}
		survivor := slot1
		if survivor == models.BracketSlotBye {
			survivor = slot2
		}
		nextPos := (pos + 1) / 2
		nextID := ids[firstRound-1][nextPos]
		slot := nextSlotFor(pos)
		if err := rt.repos.BracketMatch.SetSlotWithTx(tx, nextID, slot, survivor); err != nil {
			return errs.Wrap(errs.Dependency, err, "failed to pre-fill BYE survivor into next round")
		}
	}
	return nil
}

// nextSlotFor: odd positions feed member1Id, even feed member2Id of the
// next match.
func nextSlotFor(position int) int {
	if position%2 == 1 {
		return 1
	}
	return 2
}

// AdvanceResult reports the effect of recording a bracket match result.
type AdvanceResult struct {
	TournamentComplete bool
}

// Advance links a scored Match to its BracketMatch and, if not the final,
// writes the winner into the next round's slot.
func (rt *BracketRuntime) Advance(ctx context.Context, tx *sql.Tx, bracketMatchID string, match *models.Match) (*AdvanceResult, error) {
	bm, err := rt.repos.BracketMatch.GetByIDWithTx(tx, bracketMatchID)
	if err != nil {
		return nil, errs.NewNotFound("bracket match %s not found", bracketMatchID)
	}
	if bm.IsBye() {
		return nil, errs.NewValidation("cannot record a result against a BYE bracket match")
	}
	if !match.HasDeclaredWinner() {
		return nil, errs.NewValidation("match %s has no declared winner", match.ID)
	}

	if err := rt.repos.BracketMatch.SetMatchIDWithTx(tx, bm.ID, match.ID); err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to link match to bracket slot")
	}

	if bm.IsFinal() {
		return &AdvanceResult{TournamentComplete: true}, nil
	}
	if bm.NextMatchID == nil {
		return nil, errs.NewIntegrity("non-final bracket match %s has no next match linked", bm.ID)
	}

	winner := match.WinnerID()
	slot := nextSlotFor(bm.Position)
	if err := rt.repos.BracketMatch.SetSlotWithTx(tx, *bm.NextMatchID, slot, winner); err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to advance winner")
	}
	return &AdvanceResult{TournamentComplete: false}, nil
}

// IsComplete reports whether the final bracket match has a linked Match
// with both set scores recorded.
func (rt *BracketRuntime) IsComplete(ctx context.Context, tournamentID string) (bool, error) {
	matches, err := rt.repos.BracketMatch.GetByTournamentID(ctx, tournamentID)
	if err != nil {
		return false, errs.Wrap(errs.Dependency, err, "failed to load bracket matches")
	}
	for _, bm := range matches {
		if !bm.IsFinal() {
			continue
		}
		if bm.MatchID == nil {
			return false, nil
		}
		m, err := rt.repos.Match.GetByID(ctx, *bm.MatchID)
		if err != nil {
			return false, errs.Wrap(errs.Dependency, err, "failed to load final match")
		}
		return m.HasDeclaredWinner(), nil
	}
	return false, errs.NewNotFound("tournament %s has no final bracket match", tournamentID)
}

// ResolveBracketMatch finds the BracketMatch a plugin's updateMatch should
// target, accepting either a Match ID or a BracketMatch ID directly.
func (rt *BracketRuntime) ResolveBracketMatch(ctx context.Context, tournamentID, id string) (*models.BracketMatch, error) {
	if bm, err := rt.repos.BracketMatch.GetByID(ctx, id); err == nil && bm.TournamentID == tournamentID {
		return bm, nil
	}
	m, err := rt.repos.Match.GetByID(ctx, id)
	if err != nil || m.BracketMatchID == nil {
		return nil, errs.NewNotFound("no bracket match or match found for id %s", id)
	}
	bm, err := rt.repos.BracketMatch.GetByID(ctx, *m.BracketMatchID)
	if err != nil || bm.TournamentID != tournamentID {
		return nil, errs.NewNotFound("bracket match for id %s not in tournament %s", id, tournamentID)
	}
	return bm, nil
}
