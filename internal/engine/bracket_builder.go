// internal/engine/bracket_builder.go
// Bracket Builder: standard seeding pattern, BYE placement respecting
// protected seeds, slot normalization.
package engine

import (
	"math/rand"
	"sort"

	"tournament-planner/internal/engine/errs"
	"tournament-planner/internal/models"
)

// BracketBuilder computes a first-round layout from a participant list.
// Construction is randomized (unseeded placement, BYE-conflict relocation);
// callers that need determinism (tests) inject their own *rand.Rand.
type BracketBuilder struct{}

// NewBracketBuilder constructs a BracketBuilder.
func NewBracketBuilder() *BracketBuilder { return &BracketBuilder{} }

// FirstRoundLayout is the length-B array the runtime turns into BracketMatch
// rows. Slots holds member IDs in 1-indexed position order; an empty string
// marks a BYE.
type FirstRoundLayout struct {
	BracketSize int
	Slots       []string
}

type seededParticipant struct {
	memberID string
	rating   int
}

// Build runs the 9-step seeding algorithm against participants, with an
// optional protected-seed count (nil defaults to the maximum allowed).
func (bb *BracketBuilder) Build(participants []*models.TournamentParticipant, protectedSeeds *int, rnd *rand.Rand) (*FirstRoundLayout, error) {
	n := len(participants)
	if n < 2 {
		return nil, errs.NewValidation("a bracket requires at least 2 participants, got %d", n)
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}

	// Step 1: bracket size and BYE count.
	size := bracketSize(n)
	byes := size - n

	// Step 2: validate / default protected-seed count.
	maxSeeds := maxProtectedSeeds(n)
	seeds := maxSeeds
	if protectedSeeds != nil {
		seeds = *protectedSeeds
		if err := validateProtectedSeeds(seeds, maxSeeds); err != nil {
			return nil, err
		}
	}

	// Step 3: standard seeding pattern, inverted to seed -> position.
	seedPosition := standardSeedPositions(size)

	// Sort by rating descending, ID ascending on ties.
	ranked := make([]seededParticipant, n)
	for i, p := range participants {
		rating := models.DefaultUnratedValue
		if p.RatingAtTime != nil {
			rating = *p.RatingAtTime
		}
		ranked[i] = seededParticipant{memberID: p.MemberID, rating: rating}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].rating != ranked[j].rating {
			return ranked[i].rating > ranked[j].rating
		}
		return ranked[i].memberID < ranked[j].memberID
	})

	slots := make([]string, size)

	// Step 4: place protected seeds.
	for s := 1; s <= seeds; s++ {
		pos := seedPosition[s-1]
		slots[pos-1] = ranked[s-1].memberID
	}

	// Step 5: one unseeded player per currently-empty match.
	unseeded := append([]seededParticipant{}, ranked[seeds:]...)
	rnd.Shuffle(len(unseeded), func(i, j int) { unseeded[i], unseeded[j] = unseeded[j], unseeded[i] })
	cursor := 0
	numMatches := size / 2
	for m := 0; m < numMatches && cursor < len(unseeded); m++ {
		if slots[2*m] != "" || slots[2*m+1] != "" {
			continue
		}
		choice := rnd.Intn(2)
		slots[2*m+choice] = unseeded[cursor].memberID
		cursor++
	}
	remaining := unseeded[cursor:]

	if err := assertOneOccupantPerMatch(slots); err != nil {
		return nil, err
	}

	// Step 6: BYE target set — top `byes` players overall by rating.
	byeTargets := make(map[string]bool, byes)
	for i := 0; i < byes && i < len(ranked); i++ {
		byeTargets[ranked[i].memberID] = true
	}
	for target := range byeTargets {
		relocateIfPaired(slots, target, byeTargets)
	}

	// Step 7: fill remaining slots among non-BYE-target single occupants.
	idx := 0
	for m := 0; m < numMatches; m++ {
		occSlot, emptySlot, ok := singleOccupant(slots, m)
		if !ok {
			continue
		}
		if byeTargets[slots[occSlot]] {
			continue
		}
		if idx < len(remaining) {
			slots[emptySlot] = remaining[idx].memberID
			idx++
		}
	}

	// Step 8: normalize BYE into slot 2.
	normalizeByeSlots(slots)

	// Step 9: validate / emergency-fix double BYEs.
	leftover := remaining[idx:]
	for pass := 0; pass < 5; pass++ {
		fixed := fixDoubleByes(slots, &leftover)
		if !fixed {
			break
		}
		normalizeByeSlots(slots)
	}
	if hasDoubleBye(slots) {
		return nil, errs.NewIntegrity("bracket build could not eliminate a double BYE after 5 passes")
	}

	return &FirstRoundLayout{BracketSize: size, Slots: slots}, nil
}

func bracketSize(n int) int {
	size := 1
	for size < n {
		size *= 2
	}
	return size
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func largestPowerOfTwoLE(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func maxProtectedSeeds(n int) int {
	m := largestPowerOfTwoLE(n / 4)
	if m < 2 {
		return 0
	}
	return m
}

func validateProtectedSeeds(s, maxAllowed int) error {
	if s == 0 {
		return nil
	}
	if s < 2 || !isPowerOfTwo(s) {
		return errs.NewValidation("protected seed count must be 0 or a power of two >= 2, got %d", s)
	}
	if s > maxAllowed {
		return errs.NewValidation("protected seed count %d exceeds the maximum of %d for this field size", s, maxAllowed)
	}
	return nil
}

// standardSeedPositions builds, for bracket size b, the array
// seedPosition[seed-1] = position (1-indexed) using the standard doubling
// bracket-halving construction.
func standardSeedPositions(b int) []int {
	positionSeed := []int{1, 2}
	size := 2
	for size < b {
		m := size * 2
		next := make([]int, m)
		for i, seed := range positionSeed {
			if i == len(positionSeed)-1 {
				next[2*i] = m + 1 - seed
				next[2*i+1] = seed
			} else {
				next[2*i] = seed
				next[2*i+1] = m + 1 - seed
			}
		}
		positionSeed = next
		size = m
	}
	seedPosition := make([]int, b)
	for i, seed := range positionSeed {
		seedPosition[seed-1] = i + 1
	}
	return seedPosition
}

func assertOneOccupantPerMatch(slots []string) error {
	for m := 0; m < len(slots)/2; m++ {
		occupied := 0
		if slots[2*m] != "" {
			occupied++
		}
		if slots[2*m+1] != "" {
			occupied++
		}
		if occupied != 1 {
			return errs.NewIntegrity("match %d has %d occupants after seed + fill passes, expected exactly 1", m+1, occupied)
		}
	}
	return nil
}

// singleOccupant returns the occupied and empty slot index of a match that
// currently holds exactly one player, or ok=false otherwise.
func singleOccupant(slots []string, matchIdx int) (occSlot, emptySlot int, ok bool) {
	a, b := 2*matchIdx, 2*matchIdx+1
	switch {
	case slots[a] != "" && slots[b] == "":
		return a, b, true
	case slots[b] != "" && slots[a] == "":
		return b, a, true
	default:
		return 0, 0, false
	}
}

// relocateIfPaired ensures target's match has no other occupant, moving
// whoever else is there to the first available empty slot elsewhere, or
// swapping with a non-target occupant if no empty slot exists.
func relocateIfPaired(slots []string, target string, byeTargets map[string]bool) {
	pos := -1
	for i, v := range slots {
		if v == target {
			pos = i
			break
		}
	}
	if pos < 0 {
		return
	}
	partner := pos ^ 1
	if slots[partner] == "" {
		return
	}
	other := slots[partner]

	for i := range slots {
		if i == partner || slots[i] != "" {
			continue
		}
		slots[i] = other
		slots[partner] = ""
		return
	}
	for i := range slots {
		if i == partner || i == pos || byeTargets[slots[i]] {
			continue
		}
		slots[i], slots[partner] = slots[partner], slots[i]
		return
	}
}

func normalizeByeSlots(slots []string) {
	for m := 0; m < len(slots)/2; m++ {
		a, b := 2*m, 2*m+1
		if slots[a] == "" && slots[b] != "" {
			slots[a], slots[b] = slots[b], slots[a]
		}
	}
}

func hasDoubleBye(slots []string) bool {
	for m := 0; m < len(slots)/2; m++ {
		if slots[2*m] == "" && slots[2*m+1] == "" {
			return true
		}
	}
	return false
}

// fixDoubleByes pulls one player from the leftover pool (or, failing that,
// moves the first occupant found in any other slot) into the first match
// with two empty slots. Returns true if a fix was applied this pass.
func fixDoubleByes(slots []string, leftover *[]seededParticipant) bool {
	for m := 0; m < len(slots)/2; m++ {
		if slots[2*m] != "" || slots[2*m+1] != "" {
			continue
		}
		if len(*leftover) > 0 {
			slots[2*m] = (*leftover)[0].memberID
			*leftover = (*leftover)[1:]
			return true
		}
		for i := range slots {
			if slots[i] != "" && i != 2*m && i != 2*m+1 {
				slots[2*m] = slots[i]
				slots[i] = ""
				return true
			}
		}
		return false
	}
	return false
}
