package advisor

import (
	domain "github.com/collectwise/advisor/pkg/types"
)

// actionContent holds the static guidance attached to each action.
type actionContent struct {
	urgency         domain.Urgency
	expectedOutcome string
	insights        []string
	timing          string
	risks           []string
	roiTimeframe    string
}

var actionContents = map[domain.Action]actionContent{
	domain.ActionListNow: {
		urgency:         domain.UrgencyHigh,
		expectedOutcome: "sell near the top of the current price window",
		insights: []string{
			"listings during active triggers close faster and higher",
			"high activity periods attract more competing bidders",
		},
		timing:       "list within the next 7 days while momentum holds",
		risks:        []string{"momentum can fade before the listing closes", "fees reduce net proceeds"},
		roiTimeframe: "1-2 weeks",
	},
	domain.ActionHold: {
		urgency:         domain.UrgencyLow,
		expectedOutcome: "capture predicted appreciation by waiting",
		insights: []string{
			"stable markets reward patience over timing",
			"prices below resistance have room to run",
		},
		timing:       "revisit in 60-90 days or when a trigger fires",
		risks:        []string{"market conditions can reverse", "capital stays tied up"},
		roiTimeframe: "3-6 months",
	},
	domain.ActionGrade: {
		urgency:         domain.UrgencyMedium,
		expectedOutcome: "realize the graded-market premium after certification",
		insights: []string{
			"graded copies reach buyers raw copies never do",
			"turnaround time varies with grading service backlog",
		},
		timing:       "submit for grading before the next market cycle",
		risks:        []string{"grade may come back lower than expected", "grading fees and shipping risk"},
		roiTimeframe: "2-4 months",
	},
	domain.ActionMonitor: {
		urgency:         domain.UrgencyLow,
		expectedOutcome: "act with better information once signals settle",
		insights: []string{
			"volatile or conflicting signals resolve within weeks",
			"upcoming triggers often move prices before they occur",
		},
		timing:       "check back weekly; re-score after the next trigger event",
		risks:        []string{"waiting can miss a short sale window"},
		roiTimeframe: "open-ended",
	},
}

func contentFor(a domain.Action) actionContent {
	return actionContents[a]
}

// Default expected-return multipliers applied to the current price when
// the predictive model supplies no figure.
const (
	defaultListNowReturn = 0.95
	defaultHoldReturn    = 1.10
	defaultGradeReturn   = 1.25
	defaultMonitorReturn = 1.00
)

// estimateROI derives the expected return for the primary action,
// preferring predictive-signal fields and falling back to documented
// defaults.
func estimateROI(a domain.Action, in Input) domain.ROIEstimate {
	price := in.Market.CurrentPrice
	c := contentFor(a)

	est := domain.ROIEstimate{Timeframe: c.roiTimeframe}

	switch a {
	case domain.ActionListNow:
		est.ExpectedReturn = price * defaultListNowReturn
		est.Basis = "typical realized sale price after fees"
		if in.Predictions.PriceChange != 0 {
			est.ExpectedReturn = price * (1 + in.Predictions.PriceChange)
			est.Basis = "predicted short-term price change"
		}
	case domain.ActionHold:
		est.ExpectedReturn = price * defaultHoldReturn
		est.Basis = "default appreciation assumption"
		if in.Predictions.LongTermGrowth != 0 {
			est.ExpectedReturn = price * (1 + in.Predictions.LongTermGrowth)
			est.Basis = "predicted long-term growth"
		}
	case domain.ActionGrade:
		est.ExpectedReturn = price * defaultGradeReturn
		est.Basis = "default graded premium assumption"
		if in.Predictions.GradingROI != 0 {
			est.ExpectedReturn = price * (1 + in.Predictions.GradingROI)
			est.Basis = "predicted grading ROI"
		}
	case domain.ActionMonitor:
		est.ExpectedReturn = price * defaultMonitorReturn
		est.Basis = "no position change"
	}

	return est
}
