package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "worklane"

// Metrics holds all Worklane metric instruments.
type Metrics struct {
	StatusTransitions metric.Int64Counter
	ReviewDecisions   metric.Int64Counter
	GoalsAssigned     metric.Int64Counter
	GoalsAchieved     metric.Int64Counter
	GoalsRejected     metric.Int64Counter
	TimelineBuilds    metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.StatusTransitions, err = meter.Int64Counter("worklane.tasks.transitions",
		metric.WithDescription("Number of task status transitions applied"))
	if err != nil {
		return nil, err
	}

	m.ReviewDecisions, err = meter.Int64Counter("worklane.tasks.review_decisions",
		metric.WithDescription("Number of review decisions resolved"))
	if err != nil {
		return nil, err
	}

	m.GoalsAssigned, err = meter.Int64Counter("worklane.goals.assigned",
		metric.WithDescription("Number of goals assigned"))
	if err != nil {
		return nil, err
	}

	m.GoalsAchieved, err = meter.Int64Counter("worklane.goals.achieved",
		metric.WithDescription("Number of goals marked achieved"))
	if err != nil {
		return nil, err
	}

	m.GoalsRejected, err = meter.Int64Counter("worklane.goals.rejected",
		metric.WithDescription("Number of goals rejected"))
	if err != nil {
		return nil, err
	}

	m.TimelineBuilds, err = meter.Int64Counter("worklane.timeline.builds",
		metric.WithDescription("Number of activity timelines reconstructed"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
