// Package matchlog defines the single persistence seam the engine
// exposes: a Sink invoked exactly once when a match ends. Persistent
// match storage itself is out of scope; this package only carries the
// callback contract and a stdout default, grounded on the teacher's
// hand-history event-sink pattern (internal/server/hand_history_adapter.go),
// repurposed from per-action rows to a single end-of-match callback.
package matchlog

import (
	"github.com/charmbracelet/log"
)

// Sink is invoked exactly once per match, when a player's score
// crosses the penalty threshold.
type Sink interface {
	OnMatchEnd(matchID, roomID, variantKey, winnerID string, participants []string, totalRounds int)
}

// StdoutSink logs the match result via a component logger instead of
// persisting it anywhere; it satisfies room.MatchEndSink for
// deployments that have not wired a real store.
type StdoutSink struct {
	logger *log.Logger
}

// NewStdoutSink builds a StdoutSink logging under the "matchlog"
// component prefix, matching the teacher's logger.WithPrefix pattern.
func NewStdoutSink(logger *log.Logger) *StdoutSink {
	return &StdoutSink{logger: logger.WithPrefix("matchlog")}
}

// OnMatchEnd implements Sink.
func (s *StdoutSink) OnMatchEnd(matchID, roomID, variantKey, winnerID string, participants []string, totalRounds int) {
	s.logger.Info("match ended",
		"matchId", matchID,
		"roomId", roomID,
		"variant", variantKey,
		"winnerId", winnerID,
		"participants", participants,
		"totalRounds", totalRounds,
	)
}
