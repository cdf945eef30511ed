package signal

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kestrelquant/kestrel/market"
)

// Strategy selects how a symbol's signals collapse into one decision.
type Strategy int

const (
	WeightedAverage Strategy = iota
	MajorityVote
	HighestConfidence
	Unanimous
)

func (s Strategy) String() string {
	switch s {
	case MajorityVote:
		return "majority-vote"
	case HighestConfidence:
		return "highest-confidence"
	case Unanimous:
		return "unanimous"
	default:
		return "weighted-average"
	}
}

// ParseStrategy resolves a config/CLI name to a strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "weighted-average", "weighted", "":
		return WeightedAverage, nil
	case "majority-vote", "majority":
		return MajorityVote, nil
	case "highest-confidence", "highest":
		return HighestConfidence, nil
	case "unanimous":
		return Unanimous, nil
	default:
		return 0, fmt.Errorf("unknown aggregation strategy %q (supported: weighted-average, majority-vote, highest-confidence, unanimous)", name)
	}
}

// MarshalText serializes the strategy name for configs and results.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a strategy name.
func (s *Strategy) UnmarshalText(b []byte) error {
	parsed, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Aggregate collapses one symbol's signals into at most one decision.
// Pure and side-effect free. Zero signals yield no decision at all, which
// is distinct from an explicit Hold.
func Aggregate(strategy Strategy, sym market.Symbol, signals []Signal) (Decision, bool) {
	if len(signals) == 0 {
		return Decision{}, false
	}

	switch strategy {
	case MajorityVote:
		return majorityVote(sym, signals), true
	case HighestConfidence:
		return highestConfidence(sym, signals), true
	case Unanimous:
		return unanimous(sym, signals), true
	default:
		return weightedAverage(sym, signals), true
	}
}

// AggregateAll groups a cycle's signals by symbol and aggregates each
// group. Output is sorted by symbol so callers see a deterministic order
// regardless of how the input was produced.
func AggregateAll(strategy Strategy, signals []Signal) []Decision {
	bySymbol := make(map[market.Symbol][]Signal)
	for _, s := range signals {
		bySymbol[s.Symbol] = append(bySymbol[s.Symbol], s)
	}

	syms := make([]market.Symbol, 0, len(bySymbol))
	for sym := range bySymbol {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })

	decisions := make([]Decision, 0, len(syms))
	for _, sym := range syms {
		if d, ok := Aggregate(strategy, sym, bySymbol[sym]); ok {
			decisions = append(decisions, d)
		}
	}
	return decisions
}

// weightedAverage nets signed confidence. Direction is the sign of
// sum(confidence*sign); result confidence is |net| over total confidence,
// clamped into [0,1]. A net of zero is a Hold.
func weightedAverage(sym market.Symbol, signals []Signal) Decision {
	var net, total float64
	for _, s := range signals {
		net += s.Confidence.Value() * s.Action.sign()
		total += s.Confidence.Value()
	}

	if net == 0 || total == 0 {
		return Decision{
			Symbol: sym,
			Action: Hold,
			Reason: fmt.Sprintf("weighted average of %d signals nets to zero", len(signals)),
		}
	}

	action := Buy
	if net < 0 {
		action = Sell
	}
	conf := market.ClampConfidence(math.Abs(net) / total)

	d := Decision{
		Symbol:     sym,
		Action:     action,
		Confidence: conf,
		Reason:     fmt.Sprintf("weighted average of %d signals (net %.3f)", len(signals), net),
	}
	d.StopLoss, d.TakeProfit = carryLevels(signals, action)
	return d
}

// majorityVote picks the action with strictly the most votes; any tie for
// first place is a Hold.
func majorityVote(sym market.Symbol, signals []Signal) Decision {
	votes := make(map[Action]int)
	confSum := make(map[Action]float64)
	for _, s := range signals {
		votes[s.Action]++
		confSum[s.Action] += s.Confidence.Value()
	}

	// Deterministic scan order over the fixed action set.
	best, bestVotes, tied := Hold, 0, false
	for _, a := range [...]Action{Buy, Sell, Close, Hold} {
		switch {
		case votes[a] > bestVotes:
			best, bestVotes, tied = a, votes[a], false
		case votes[a] == bestVotes && votes[a] > 0 && a != best:
			tied = true
		}
	}

	if tied || bestVotes == 0 {
		return Decision{
			Symbol: sym,
			Action: Hold,
			Reason: fmt.Sprintf("majority vote tied across %d signals", len(signals)),
		}
	}

	d := Decision{
		Symbol:     sym,
		Action:     best,
		Confidence: market.ClampConfidence(confSum[best] / float64(bestVotes)),
		Reason:     fmt.Sprintf("majority vote: %d of %d signals agree", bestVotes, len(signals)),
	}
	d.StopLoss, d.TakeProfit = carryLevels(signals, best)
	return d
}

// highestConfidence picks the single strongest signal; ties keep the
// earlier input.
func highestConfidence(sym market.Symbol, signals []Signal) Decision {
	best := signals[0]
	for _, s := range signals[1:] {
		if s.Confidence > best.Confidence {
			best = s
		}
	}

	return Decision{
		Symbol:     sym,
		Action:     best.Action,
		Confidence: best.Confidence,
		Reason:     fmt.Sprintf("highest confidence from %s: %s", best.Source, best.Reason),
		StopLoss:   best.StopLoss,
		TakeProfit: best.TakeProfit,
	}
}

// unanimous requires every signal to agree; the result carries the
// weakest conviction in the group.
func unanimous(sym market.Symbol, signals []Signal) Decision {
	action := signals[0].Action
	minConf := signals[0].Confidence
	for _, s := range signals[1:] {
		if s.Action != action {
			return Decision{
				Symbol: sym,
				Action: Hold,
				Reason: fmt.Sprintf("no unanimous agreement across %d signals", len(signals)),
			}
		}
		if s.Confidence < minConf {
			minConf = s.Confidence
		}
	}

	d := Decision{
		Symbol:     sym,
		Action:     action,
		Confidence: minConf,
		Reason:     fmt.Sprintf("unanimous %s from %d signals", action, len(signals)),
	}
	d.StopLoss, d.TakeProfit = carryLevels(signals, action)
	return d
}

// carryLevels keeps the first stop/target proposed by a signal that voted
// for the winning action, so risk levels survive aggregation.
func carryLevels(signals []Signal, action Action) (stop, take *market.Price) {
	for _, s := range signals {
		if s.Action != action {
			continue
		}
		if stop == nil && s.StopLoss != nil {
			stop = s.StopLoss
		}
		if take == nil && s.TakeProfit != nil {
			take = s.TakeProfit
		}
		if stop != nil && take != nil {
			break
		}
	}
	return stop, take
}
