package risk

// Code identifies which check rejected a trade.
type Code string

const (
	CodeInsufficientCapital Code = "INSUFFICIENT_CAPITAL"
	CodeMaxPositionsReached Code = "MAX_POSITIONS_REACHED"
	CodeExcessiveRisk       Code = "EXCESSIVE_RISK"
	CodeCorrelationExposure Code = "CORRELATION_EXPOSURE"
	CodeConsecutiveLosses   Code = "CONSECUTIVE_LOSSES"
	CodeMaxDrawdownReached  Code = "MAX_DRAWDOWN_REACHED"
	CodeEmergencyStop       Code = "EMERGENCY_STOP"
)

// Violation is the specific reason a trade was rejected, with the
// offending numbers in the message. It is ordinary control flow, not an
// error: callers skip the trade and keep going.
type Violation struct {
	Code Code   `json:"code"`
	Msg  string `json:"msg"`
}

func (v Violation) String() string {
	return string(v.Code) + ": " + v.Msg
}

// Result is the outcome of evaluating one trade request.
type Result struct {
	Approved  bool
	Violation *Violation

	// RiskPct is the planned risk of the request as a percentage of
	// portfolio value, filled whenever it was computed.
	RiskPct float64
}

func approved(riskPct float64) Result {
	return Result{Approved: true, RiskPct: riskPct}
}

func rejected(code Code, msg string, riskPct float64) Result {
	return Result{Violation: &Violation{Code: code, Msg: msg}, RiskPct: riskPct}
}
