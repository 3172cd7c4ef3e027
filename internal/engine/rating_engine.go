// internal/engine/rating_engine.go
// Rating Engine: Mode A per-match incremental, Mode B four-pass
// USATT-style algorithm, and chronological replay.
package engine

import (
	"context"
	"database/sql"
	"log"
	"sort"
	"time"

	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
	"tournament-planner/internal/utils"
)

// RatingEngine computes and persists rating changes for both operating
// modes: Mode A's per-match increment and Mode B's four-pass tournament
// completion batch.
type RatingEngine struct {
	repos       *repositories.Container
	pointTable  *PointExchangeTable
	ratingCache PostRatingCache
	logger      *log.Logger
}

// NewRatingEngine constructs a RatingEngine.
func NewRatingEngine(repos *repositories.Container, pointTable *PointExchangeTable, ratingCache PostRatingCache, logger *log.Logger) *RatingEngine {
	return &RatingEngine{repos: repos, pointTable: pointTable, ratingCache: ratingCache, logger: logger}
}

// ---- Mode A: per-match incremental ----------------------------------------

// ApplyModeAWithTx applies the per-match incremental update for Playoff
// matches and standalone matches. Never applied to BYEs (which never
// produce a Match row) or forfeits.
func (e *RatingEngine) ApplyModeAWithTx(ctx context.Context, tx *sql.Tx, match *models.Match, reason models.RatingChangeReason) error {
	if match.P1Forfeit || match.P2Forfeit {
		return nil
	}
	if !match.HasDeclaredWinner() {
		return errs.NewValidation("match %s has no declared winner", match.ID)
	}

	winnerID, loserID := match.WinnerID(), match.LoserID()
	members, err := e.repos.Member.GetByIDs(ctx, []string{winnerID, loserID})
	if err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to load members for rating update")
	}
	winnerRating := currentRating(members[winnerID])
	loserRating := currentRating(members[loserID])

	winnerPoints, loserPoints, err := e.pointTable.MatchPoints(ctx, time.Now(), winnerRating, loserRating)
	if err != nil {
		return errs.Wrap(errs.Dependency, err, "point-exchange lookup failed")
	}

	newWinnerRating := clampNonNegative(winnerRating + winnerPoints)
	newLoserRating := clampNonNegative(loserRating + loserPoints)

	now := time.Now()
	rows := []*models.RatingHistory{
		{
			ID: utils.GenerateUUID(), MemberID: winnerID, Rating: newWinnerRating,
			RatingChange: newWinnerRating - winnerRating, Timestamp: now, Reason: reason,
			TournamentID: match.TournamentID, MatchID: &match.ID, MatchCreatedAt: &match.CreatedAt,
		},
		{
			ID: utils.GenerateUUID(), MemberID: loserID, Rating: newLoserRating,
			RatingChange: newLoserRating - loserRating, Timestamp: now, Reason: reason,
			TournamentID: match.TournamentID, MatchID: &match.ID, MatchCreatedAt: &match.CreatedAt,
		},
	}
	for _, row := range rows {
		if err := e.repos.RatingHistory.CreateWithTx(tx, row); err != nil {
			return errs.Wrap(errs.Dependency, err, "failed to write rating history")
		}
	}
	if err := e.repos.Member.UpdateRatingWithTx(tx, winnerID, newWinnerRating); err != nil {
		return err
	}
	return e.repos.Member.UpdateRatingWithTx(tx, loserID, newLoserRating)
}

func currentRating(m *models.Member) int {
	if m == nil || m.Rating == nil {
		return models.DefaultUnratedValue
	}
	return *m.Rating
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// ---- Mode B: four-pass tournament completion ------------------------------

// participantResult accumulates one participant's match outcomes for the
// four-pass algorithm, all keyed off ratingAtTime snapshots. wins/losses
// only ever hold rated opponents: Pass 1 and the unrated Pass 2 seeding both
// disregard unrated-vs-unrated results for lack of any anchor rating.
type participantResult struct {
	memberID string
	initial  *int // nil => unrated
	winIDs   []string
	wins     []int // rated opponent's ratingAtTime, parallel to winIDs
	lossIDs  []string
	losses   []int // rated opponent's ratingAtTime, parallel to lossIDs
}

func (p *participantResult) rated() bool { return p.initial != nil }

func (p *participantResult) initialOrDefault() int {
	if p.initial != nil {
		return *p.initial
	}
	return models.DefaultUnratedValue
}

func (p *participantResult) played() int { return len(p.wins) + len(p.losses) }

// ApplyModeBWithTx runs the four-pass algorithm for a just-completed
// tournament and writes one TOURNAMENT_COMPLETED RatingHistory row per
// participant, skipping any participant who already has one (idempotency).
func (e *RatingEngine) ApplyModeBWithTx(ctx context.Context, tx *sql.Tx, tournament *models.Tournament) error {
	participants, err := e.repos.TournamentParticipant.GetByTournamentID(ctx, tournament.ID)
	if err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to load participants")
	}
	matches, err := e.repos.Match.GetByTournamentID(ctx, tournament.ID)
	if err != nil {
		return errs.Wrap(errs.Dependency, err, "failed to load matches")
	}

	results := make(map[string]*participantResult, len(participants))
	for _, p := range participants {
		results[p.MemberID] = &participantResult{memberID: p.MemberID, initial: p.RatingAtTime}
	}

	for _, m := range matches {
		// Pass 1 excludes forfeits, BYEs (never a Match row), and unplayed
		// matches (zero-zero placeholders aren't possible since a BYE never
		// produces a row, but an in-progress/unscored row could exist).
		if m.P1Forfeit || m.P2Forfeit || !m.HasDeclaredWinner() {
			continue
		}
		winnerID, loserID := m.WinnerID(), m.LoserID()
		winner, ok1 := results[winnerID]
		loser, ok2 := results[loserID]
		if !ok1 || !ok2 {
			continue
		}
		// Only a rated opponent anchors a win/loss for Pass 1 and the
		// unrated Pass 2 seeding; an unrated-vs-unrated result contributes
		// nothing to either side.
		if loser.rated() {
			winner.winIDs = append(winner.winIDs, loserID)
			winner.wins = append(winner.wins, *loser.initial)
		}
		if winner.rated() {
			loser.lossIDs = append(loser.lossIDs, winnerID)
			loser.losses = append(loser.losses, *winner.initial)
		}
	}

	asOf := time.Now()
	if tournament.RecordedAt != nil {
		asOf = *tournament.RecordedAt
	}

	pass1 := make(map[string]int, len(results))
	for id, r := range results {
		if !r.rated() {
			continue
		}
		tentative := *r.initial
		for _, oppRating := range r.wins {
			pts, err := e.pointTable.Lookup(ctx, asOf, *r.initial-oppRating, IsUpset(*r.initial, oppRating))
			if err != nil {
				return errs.Wrap(errs.Dependency, err, "point-exchange lookup failed")
			}
			tentative += pts
		}
		for _, oppRating := range r.losses {
			pts, err := e.pointTable.Lookup(ctx, asOf, oppRating-*r.initial, IsUpset(oppRating, *r.initial))
			if err != nil {
				return errs.Wrap(errs.Dependency, err, "point-exchange lookup failed")
			}
			tentative -= pts
		}
		pass1[id] = tentative
	}

	pass2 := make(map[string]int, len(results))
	for id, r := range results {
		if !r.rated() {
			continue
		}
		pass2[id] = pass2Rated(r, pass1[id])
	}
	for id, r := range results {
		if r.rated() {
			continue
		}
		pass2[id] = pass2Unrated(r, pass2)
	}

	pass3 := make(map[string]int, len(results))
	for id, r := range results {
		if r.rated() {
			pass3[id] = maxInt(pass2[id], *r.initial)
		} else {
			pass3[id] = pass2[id]
		}
	}

	final := make(map[string]int, len(results))
	for id, r := range results {
		base := r.initialOrDefault()
		delta := 0
		for _, m := range matches {
			if m.P1Forfeit || m.P2Forfeit || !m.HasDeclaredWinner() {
				continue
			}
			winner, loser := m.WinnerID(), m.LoserID()
			if winner != id && loser != id {
				continue
			}
			other := winner
			if winner == id {
				other = loser
			}
			if _, ok := results[other]; !ok {
				continue
			}
			selfP3 := pass3[id]
			otherP3 := pass3[other]
			if winner == id {
				pts, err := e.pointTable.Lookup(ctx, asOf, selfP3-otherP3, IsUpset(selfP3, otherP3))
				if err != nil {
					return errs.Wrap(errs.Dependency, err, "point-exchange lookup failed")
				}
				delta += pts
			} else {
				pts, err := e.pointTable.Lookup(ctx, asOf, otherP3-selfP3, IsUpset(otherP3, selfP3))
				if err != nil {
					return errs.Wrap(errs.Dependency, err, "point-exchange lookup failed")
				}
				delta -= pts
			}
		}
		final[id] = clampNonNegative(round(float64(base + delta)))
	}

	for memberID, rating := range final {
		exists, err := e.repos.RatingHistory.ExistsTournamentCompletionRowWithTx(tx, memberID, tournament.ID)
		if err != nil {
			return errs.Wrap(errs.Dependency, err, "idempotency check failed")
		}
		if exists {
			continue
		}
		r := results[memberID]
		priorRating := r.initialOrDefault()
		row := &models.RatingHistory{
			ID: utils.GenerateUUID(), MemberID: memberID, Rating: rating,
			RatingChange: rating - priorRating, Timestamp: asOf,
			Reason: models.ReasonTournamentCompleted, TournamentID: &tournament.ID,
		}
		if err := e.repos.RatingHistory.CreateWithTx(tx, row); err != nil {
			return errs.Wrap(errs.Dependency, err, "failed to write rating history")
		}
		if err := e.repos.Member.UpdateRatingWithTx(tx, memberID, rating); err != nil {
			return err
		}
		if e.ratingCache != nil {
			if err := e.ratingCache.Put(ctx, tournament.ID, memberID, rating, 0); err != nil {
				e.logger.Printf("post-rating cache write failed for %s/%s: %v", tournament.ID, memberID, err)
			}
		}
	}
	return nil
}

// pass2Rated implements the rated branch of Pass 2.
func pass2Rated(r *participantResult, pass1 int) int {
	gained := pass1 - *r.initial
	switch {
	case gained < 50:
		return *r.initial
	case gained <= 74:
		return pass1
	case r.played() == 1:
		// Single-match guard: cap the swing at +-100; a pure loss never
		// increases the rating. This branch is largely defensive — a
		// SINGLE_MATCH tournament always uses Mode A, never Mode B — but is
		// preserved verbatim per the Design Notes open question.
		delta := gained
		if delta > 100 {
			delta = 100
		}
		if delta < -100 {
			delta = -100
		}
		if len(r.losses) == 1 && delta > 0 {
			delta = 0
		}
		return *r.initial + delta
	case len(r.wins) > 0 && len(r.losses) > 0:
		bestWin := maxOf(r.wins)
		worstLoss := minOf(r.losses)
		return round(float64(pass1+round(float64(bestWin+worstLoss)/2)) / 2)
	default:
		// All-wins or all-losses, multi-match: median of opponent ratings.
		all := append(append([]int{}, r.wins...), r.losses...)
		return median(all)
	}
}

// intermediate is the unrated-seeding bonus/penalty table Pass 2's unrated
// branch applies, scaled by the spread of opponent ratings faced.
func intermediate(diff int) int {
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff >= 1 && diff <= 50:
		return 10
	case diff >= 51 && diff <= 100:
		return 5
	case diff >= 101 && diff <= 150:
		return 1
	default:
		return 0
	}
}

// pass2Unrated implements the unrated branch of Pass 2, seeding from rated
// opponents' own Pass-2 adjustments (looked up by ID in rivalPass2, not the
// frozen ratingAtTime snapshot). "diff" is read as the spread between the
// strongest and weakest opponent in the relevant result set — one of a few
// readings of an otherwise-unstated "diff" this engine commits to (see
// DESIGN.md).
func pass2Unrated(r *participantResult, rivalPass2 map[string]int) int {
	wins := resolvePass2(r.winIDs, r.wins, rivalPass2)
	losses := resolvePass2(r.lossIDs, r.losses, rivalPass2)
	switch {
	case len(wins) == 0 && len(losses) == 0:
		return models.DefaultUnratedValue
	case len(wins) > 0 && len(losses) > 0:
		bestWin := maxOf(wins)
		worstLoss := minOf(losses)
		return round(float64(bestWin+worstLoss) / 2)
	case len(wins) > 0:
		bestWin := maxOf(wins)
		diff := bestWin - minOf(wins)
		return bestWin + intermediate(diff)
	case len(losses) > 0:
		worstLoss := minOf(losses)
		diff := maxOf(losses) - worstLoss
		return worstLoss - intermediate(diff)
	default:
		return models.DefaultUnratedValue
	}
}

// resolvePass2 looks up each opponent's Pass-2 rating by ID, falling back to
// the frozen ratingAtTime value (fallback parallel slice) for an opponent
// pass2 hasn't been computed for yet (a rated opponent always has one by
// this point; this only guards against a missing map entry).
func resolvePass2(ids []string, fallback []int, rivalPass2 map[string]int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		if v, ok := rivalPass2[id]; ok {
			out[i] = v
		} else {
			out[i] = fallback[i]
		}
	}
	return out
}

func maxOf(vals []int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func median(vals []int) int {
	sorted := append([]int{}, vals...)
	sort.Ints(sorted)
	n := len(sorted)
	if n == 0 {
		return models.DefaultUnratedValue
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return round(float64(sorted[n/2-1]+sorted[n/2]) / 2)
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ---- Chronological replay --------------------------------------------------

// ReplayResult reports what chronological replay touched.
type ReplayResult struct {
	TournamentsReplayed int
}

// ReplayFrom re-runs the chronological rating replay for every completed
// tournament with CreatedAt >= after (or every completed tournament if after
// is the zero time), in CreatedAt order. Each tournament is re-rated from its
// participants' RatingAtTime snapshots and writes their current member
// ratings before the next one is processed; no separate in-memory rating
// map is kept. Mode A tournaments (Playoff, single matches) are not
// replayed: their point-exchange history is written once, at the moment the
// match was scored, and per-match history rows linked to an edited match
// are left in place — only TOURNAMENT_COMPLETED (Mode B) rows are
// recomputed.
func (e *RatingEngine) ReplayFrom(ctx context.Context, after time.Time) (*ReplayResult, error) {
	var tournaments []*models.Tournament
	var err error
	if after.IsZero() {
		tournaments, err = e.repos.Tournament.ListCompletedChronological(ctx)
	} else {
		tournaments, err = e.repos.Tournament.ListCompletedAfter(ctx, after)
	}
	if err != nil {
		return nil, errs.Wrap(errs.Dependency, err, "failed to list tournaments for replay")
	}

	result := &ReplayResult{}
	for _, t := range tournaments {
		// Only Round Robin and Swiss ever use Mode B; Playoff and standalone
		// matches use Mode A and are never replayed (see doc comment above).
		// Compound parents carry no matches of their own and are skipped too
		// — their rating effect lives entirely on their final child.
		if t.Kind != models.KindRoundRobin && t.Kind != models.KindSwiss {
			continue
		}

		tx, err := e.repos.BeginTx(ctx)
		if err != nil {
			return result, errs.Wrap(errs.Dependency, err, "failed to begin replay transaction")
		}
		if err := e.repos.RatingHistory.DeleteForTournamentWithTx(tx, t.ID); err != nil {
			_ = tx.Rollback()
			return result, errs.Wrap(errs.Dependency, err, "failed to clear stale tournament-completion rows")
		}
		if err := e.ApplyModeBWithTx(ctx, tx, t); err != nil {
			_ = tx.Rollback()
			return result, err
		}
		if err := tx.Commit(); err != nil {
			return result, errs.Wrap(errs.Dependency, err, "failed to commit replay transaction")
		}
		if e.ratingCache != nil {
			if err := e.ratingCache.IndexTournament(ctx, t.ID, t.CreatedAt); err != nil {
				e.logger.Printf("tournament order index write failed for %s: %v", t.ID, err)
			}
		}
		result.TournamentsReplayed++
	}
	return result, nil
}
