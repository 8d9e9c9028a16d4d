package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type RosterMetrics struct {
	logins          metric.Int64Counter
	logouts         metric.Int64Counter
	studentsCreated metric.Int64Counter
	studentsUpdated metric.Int64Counter
	studentsDeleted metric.Int64Counter
	rosterViewed    metric.Int64Counter
}

func NewRosterMetrics(meter metric.Meter) (*RosterMetrics, error) {
	m := &RosterMetrics{}

	var err error

	m.logins, err = meter.Int64Counter(
		"roster_service.auth.logins",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.logouts, err = meter.Int64Counter(
		"roster_service.auth.logouts",
		metric.WithDescription("Total number of logouts"),
		metric.WithUnit("{logout}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsCreated, err = meter.Int64Counter(
		"roster_service.students.created",
		metric.WithDescription("Total number of students created"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsUpdated, err = meter.Int64Counter(
		"roster_service.students.updated",
		metric.WithDescription("Total number of students updated"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsDeleted, err = meter.Int64Counter(
		"roster_service.students.deleted",
		metric.WithDescription("Total number of students deleted"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.rosterViewed, err = meter.Int64Counter(
		"roster_service.students.list_viewed",
		metric.WithDescription("Total number of times the roster was listed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *RosterMetrics) RecordLogin(ctx context.Context) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m *RosterMetrics) RecordLogout(ctx context.Context) {
	if m != nil && m.logouts != nil {
		m.logouts.Add(ctx, 1)
	}
}

func (m *RosterMetrics) RecordStudentCreated(ctx context.Context) {
	if m != nil && m.studentsCreated != nil {
		m.studentsCreated.Add(ctx, 1)
	}
}

func (m *RosterMetrics) RecordStudentUpdated(ctx context.Context) {
	if m != nil && m.studentsUpdated != nil {
		m.studentsUpdated.Add(ctx, 1)
	}
}

func (m *RosterMetrics) RecordStudentDeleted(ctx context.Context) {
	if m != nil && m.studentsDeleted != nil {
		m.studentsDeleted.Add(ctx, 1)
	}
}

func (m *RosterMetrics) RecordRosterViewed(ctx context.Context) {
	if m != nil && m.rosterViewed != nil {
		m.rosterViewed.Add(ctx, 1)
	}
}
