package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the auth counters. A nil *Metrics records nothing.
type Metrics struct {
	loginAttempts metric.Int64Counter
	gateVerdicts  metric.Int64Counter
	otpIssued     metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	loginAttempts, err := meter.Int64Counter("auth_login_attempts",
		metric.WithDescription("Login attempts by method and outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create login attempts counter: %w", err)
	}

	gateVerdicts, err := meter.Int64Counter("auth_gate_verdicts",
		metric.WithDescription("Authorization decisions by verdict and reason"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gate verdicts counter: %w", err)
	}

	otpIssued, err := meter.Int64Counter("auth_otp_issued",
		metric.WithDescription("One-time reset codes issued"))
	if err != nil {
		return nil, fmt.Errorf("failed to create otp counter: %w", err)
	}

	return &Metrics{
		loginAttempts: loginAttempts,
		gateVerdicts:  gateVerdicts,
		otpIssued:     otpIssued,
	}, nil
}

func (m *Metrics) LoginAttempt(ctx context.Context, method, outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) GateVerdict(ctx context.Context, allowed bool, reason DenyReason) {
	if m == nil {
		return
	}
	verdict := "deny"
	if allowed {
		verdict = "allow"
	}
	m.gateVerdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verdict", verdict),
		attribute.String("reason", string(reason)),
	))
}

func (m *Metrics) OTPIssued(ctx context.Context) {
	if m == nil {
		return
	}
	m.otpIssued.Add(ctx, 1)
}
