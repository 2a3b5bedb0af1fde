package room

import (
	"github.com/bura/server/internal/card"
	"github.com/bura/server/internal/trick"
)

// tickLocked runs the lazy timeout and reveal probes every exported
// intent and every snapshot call invokes first, per spec.md section 5.
func (r *Room) tickLocked() {
	r.checkTimeoutLocked()
	r.checkRevealLocked()
}

func (r *Room) checkTimeoutLocked() {
	if !r.roundActive || r.revealSnapshot != nil || r.turnDeadline.IsZero() {
		return
	}
	if !r.clock.Now().After(r.turnDeadline) {
		return
	}

	offender := r.currentPlayer()
	penalties := make(map[string]int, len(r.players))
	for _, p := range r.players {
		penalties[p.ID] = 0
	}
	if offender != nil {
		penalties[offender.ID] = 6
	}
	r.finishRoundLocked(penalties, nil, true)
}

func (r *Room) checkRevealLocked() {
	if r.revealSnapshot == nil {
		return
	}
	if !r.clock.Now().After(r.revealSnapshot.RevealUntil) {
		return
	}

	r.revealSnapshot = nil
	if r.pendingRoundStart {
		r.pendingRoundStart = false
		r.startNewRoundLocked(false)
		return
	}
	if r.pendingTurnResume {
		r.pendingTurnResume = false
		r.refreshDeadlineLocked()
	}
}

// PlayCards handles both a trick lead and a trick follow, depending on
// whether a trick is currently in flight.
func (r *Room) PlayCards(playerID string, cards []card.Card, roundID, trickIndex *int) error {
	defer r.lock()()
	r.tickLocked()

	if !r.roundActive {
		return NewError(ErrRoundNotActive)
	}
	if r.revealSnapshot != nil {
		return NewError(ErrAwaitReveal)
	}
	cur := r.currentPlayer()
	if cur == nil || cur.ID != playerID {
		return NewError(ErrNotYourTurn)
	}
	if roundID != nil && *roundID != r.roundID {
		return NewError(ErrRoundMismatch)
	}
	if r.currentTrick != nil && trickIndex != nil && *trickIndex != r.currentTrick.TrickIndex {
		return NewError(ErrTrickMismatch)
	}

	hand := r.hands[playerID]
	for _, c := range cards {
		if !containsCard(hand, c) {
			return NewError(ErrCardNotInHand)
		}
	}

	if r.currentTrick == nil {
		return r.playLeadLocked(cur, cards)
	}
	return r.playFollowLocked(cur, cards)
}

func (r *Room) playLeadLocked(p *Player, cards []card.Card) error {
	n := len(cards)
	switch {
	case n >= 1 && n <= 3:
		suit := cards[0].Suit
		for _, c := range cards {
			if c.Suit != suit {
				return NewError(ErrLeaderSuitMismatch)
			}
		}
	case n == 4:
		if !validFourCardThrow(cards) {
			return NewError(ErrInvalidFourCardThrow)
		}
	default:
		return NewError(ErrInvalidFourCardThrow)
	}

	if n > r.minOpponentHandSizeLocked(p.ID) {
		return NewError(ErrOpponentsTooShort)
	}

	r.trickCounter++
	r.currentTrick = &Trick{
		TrickIndex:    r.trickCounter,
		LeaderID:      p.ID,
		LeaderSeat:    p.Seat,
		RequiredCount: n,
		OwnerID:       p.ID,
		OwnerSeat:     p.Seat,
		OwnerCards:    cards,
		Plays: []Play{{
			PlayerID: p.ID,
			Seat:     p.Seat,
			Cards:    cards,
			Outcome:  OutcomeLead,
			IsOwner:  true,
		}},
	}

	r.removeCardsFromHandLocked(p.ID, cards)
	r.advanceTurnLocked()
	r.checkTrickCompleteLocked()
	return nil
}

func (r *Room) playFollowLocked(p *Player, cards []card.Card) error {
	t := r.currentTrick
	if len(cards) != t.RequiredCount {
		return NewError(ErrMustMatchRequiredCount)
	}

	result := trick.Evaluate(cards, t.OwnerCards, r.trump, t.RequiredCount)
	outcome, becomesOwner := classify(result.Outcome)

	if becomesOwner {
		for i := range t.Plays {
			t.Plays[i].IsOwner = false
		}
		t.OwnerID = p.ID
		t.OwnerSeat = p.Seat
		t.OwnerCards = cards
	}

	t.Plays = append(t.Plays, Play{
		PlayerID: p.ID,
		Seat:     p.Seat,
		Cards:    cards,
		Outcome:  outcome,
		IsOwner:  becomesOwner,
	})

	r.removeCardsFromHandLocked(p.ID, cards)
	r.advanceTurnLocked()
	r.checkTrickCompleteLocked()
	return nil
}

func classify(o trick.Outcome) (PlayOutcome, bool) {
	switch o {
	case trick.Beat:
		return OutcomeBeat, true
	case trick.Partial:
		return OutcomePartial, false
	default:
		return OutcomeDiscard, false
	}
}

func (r *Room) advanceTurnLocked() {
	r.turnIndex = (r.turnIndex + 1) % len(r.players)
}

func (r *Room) checkTrickCompleteLocked() {
	if r.currentTrick != nil && len(r.currentTrick.Plays) == len(r.players) {
		r.completeTrickLocked()
	}
}

func (r *Room) completeTrickLocked() {
	t := r.currentTrick
	winnerID := t.OwnerID

	var won []card.Card
	for _, play := range t.Plays {
		won = append(won, play.Cards...)
	}
	r.takenPiles[winnerID] = append(r.takenPiles[winnerID], won...)
	r.discardPile = append(r.discardPile, won...)
	r.lastTrickWinnerID = winnerID

	t.RevealUntil = r.clock.Now().Add(RevealDelay)
	r.revealSnapshot = t
	r.currentTrick = nil
	r.turnIndex = r.seatOf(winnerID)

	r.drawUpLocked(winnerID)

	if r.handsAndDeckEmptyLocked() {
		points := r.computePointsLocked()
		penalties, leaders := computePenalties(r.playerOrderLocked(), points)
		r.finishRoundLocked(penalties, leaders, false)
	} else {
		r.pendingTurnResume = true
	}
}

// drawUpLocked draws from the deck in seat order starting at the
// trick winner, one card per player per pass, skipping players
// already holding four cards, until a full pass grants nobody a card
// or the deck empties.
func (r *Room) drawUpLocked(winnerID string) {
	n := len(r.players)
	if n == 0 {
		return
	}
	winnerSeat := r.seatOf(winnerID)

	for {
		grantedAny := false
		for i := 0; i < n; i++ {
			p := r.playerAtSeat((winnerSeat + i) % n)
			if p == nil || len(r.hands[p.ID]) >= 4 {
				continue
			}
			c, ok := r.deck.Deal()
			if !ok {
				return
			}
			r.hands[p.ID] = append(r.hands[p.ID], c)
			grantedAny = true
		}
		if !grantedAny || r.deck.Empty() {
			return
		}
	}
}

func (r *Room) handsAndDeckEmptyLocked() bool {
	if !r.deck.Empty() {
		return false
	}
	for _, p := range r.players {
		if len(r.hands[p.ID]) > 0 {
			return false
		}
	}
	return true
}

func (r *Room) computePointsLocked() map[string]int {
	points := make(map[string]int, len(r.players))
	for _, p := range r.players {
		total := 0
		for _, c := range r.takenPiles[p.ID] {
			total += c.Rank.Points()
		}
		points[p.ID] = total
	}
	return points
}

// computePenalties applies the round-end penalty table to a set of
// per-player point totals. Ties for the maximum are all leaders.
func computePenalties(order []string, points map[string]int) (map[string]int, []string) {
	max := -1
	for _, id := range order {
		if points[id] > max {
			max = points[id]
		}
	}

	var leaders []string
	for _, id := range order {
		if points[id] == max {
			leaders = append(leaders, id)
		}
	}
	isLeader := make(map[string]bool, len(leaders))
	for _, id := range leaders {
		isLeader[id] = true
	}

	penalties := make(map[string]int, len(order))
	for _, id := range order {
		switch {
		case isLeader[id]:
			penalties[id] = 0
		case points[id] == 31:
			penalties[id] = 2
		case points[id] == 0:
			penalties[id] = 6
		default:
			penalties[id] = 4
		}
	}
	return penalties, leaders
}

// finishRoundLocked applies penalties and game-win increments, checks
// for match end, and either starts the next round immediately or
// marks pendingRoundStart for the reveal completion to pick up.
func (r *Room) finishRoundLocked(penalties map[string]int, leaders []string, immediate bool) {
	for id, pen := range penalties {
		r.scores[id] += pen
	}
	for _, id := range leaders {
		r.gameWins[id]++
	}
	r.roundActive = false

	var winners, losers []string
	for _, p := range r.players {
		if r.scores[p.ID] >= 12 {
			losers = append(losers, p.ID)
		} else {
			winners = append(winners, p.ID)
		}
	}

	if len(losers) > 0 {
		r.matchOver = true
		r.losers = losers
		r.winners = winners
		if len(winners) == 1 {
			r.winnerID = winners[0]
		} else {
			r.winnerID = ""
		}
		if r.sink != nil {
			r.sink.OnMatchEnd(r.matchID, r.ID, r.VariantKey, r.winnerID, r.playerOrderLocked(), r.roundID)
		}
		return
	}

	if immediate {
		r.startNewRoundLocked(false)
	} else {
		r.pendingRoundStart = true
	}
}

func (r *Room) playerOrderLocked() []string {
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

// EarlyTurnGrant is returned by RequestEarlyTurn on success so the
// caller can emit the EARLY_TURN_GRANTED event before broadcasting
// state.
type EarlyTurnGrant struct {
	PlayerID string
	Suit     card.Suit
	Cards    []card.Card
}

// RequestEarlyTurn lets a player seize the turn between tricks by
// showing four cards of one suit with enough high cards.
func (r *Room) RequestEarlyTurn(playerID string, suit card.Suit, roundID *int) (*EarlyTurnGrant, error) {
	defer r.lock()()
	r.tickLocked()

	if !r.roundActive {
		return nil, NewError(ErrRoundNotActive)
	}
	if r.revealSnapshot != nil {
		return nil, NewError(ErrAwaitReveal)
	}
	if r.currentTrick != nil {
		return nil, NewError(ErrTrickAlreadyStarted)
	}
	if roundID != nil && *roundID != r.roundID {
		return nil, NewError(ErrRoundMismatch)
	}

	hand := r.hands[playerID]
	suited := filterBySuit(hand, suit)
	if len(suited) != 4 {
		return nil, NewError(ErrEarlyTurnInsufficientCards)
	}
	if len(filterByRank(suited, card.Ace)) < 1 {
		return nil, NewError(ErrEarlyTurnRequiresAce)
	}
	highCount := len(filterByRank(suited, card.Ace)) + len(filterByRank(suited, card.Ten))
	if highCount < 3 {
		return nil, NewError(ErrEarlyTurnRequiresThreeHigh)
	}

	r.turnIndex = r.seatOf(playerID)
	r.refreshDeadlineLocked()

	return &EarlyTurnGrant{PlayerID: playerID, Suit: suit, Cards: suited}, nil
}

func containsCard(hand []card.Card, c card.Card) bool {
	for _, h := range hand {
		if h == c {
			return true
		}
	}
	return false
}

func (r *Room) removeCardsFromHandLocked(playerID string, cards []card.Card) {
	hand := r.hands[playerID]
	for _, c := range cards {
		for i, h := range hand {
			if h == c {
				hand = append(hand[:i], hand[i+1:]...)
				break
			}
		}
	}
	r.hands[playerID] = hand
}

func (r *Room) minOpponentHandSizeLocked(exceptPlayerID string) int {
	min := -1
	for _, p := range r.players {
		if p.ID == exceptPlayerID {
			continue
		}
		size := len(r.hands[p.ID])
		if min == -1 || size < min {
			min = size
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

// validFourCardThrow implements the leader's special 4-card lead:
// all same suit, or 4 Aces, or 4 Tens, or a mixture of only Aces and
// Tens totaling 4 with at least one of each.
func validFourCardThrow(cards []card.Card) bool {
	if len(cards) != 4 {
		return false
	}

	suit := cards[0].Suit
	allSameSuit := true
	aces, tens, other := 0, 0, 0
	for _, c := range cards {
		if c.Suit != suit {
			allSameSuit = false
		}
		switch c.Rank {
		case card.Ace:
			aces++
		case card.Ten:
			tens++
		default:
			other++
		}
	}
	if allSameSuit {
		return true
	}
	if other > 0 {
		return false
	}
	if aces == 4 || tens == 4 {
		return true
	}
	return aces >= 1 && tens >= 1 && aces+tens == 4
}
