package metrics

import (
	"fmt"
	"math"
	"sort"

	"finsight/internal/models"
)

// KPIStatus buckets a metric's evaluated score.
type KPIStatus string

const (
	KPIStatusHealthy  KPIStatus = "healthy"
	KPIStatusWarning  KPIStatus = "warning"
	KPIStatusCritical KPIStatus = "critical"
	KPIStatusNeutral  KPIStatus = "neutral"
)

// KPIConfig holds the thresholds a raw metric value is scored against.
// Target and Warning must both be set for the metric to be scored;
// otherwise it is unconfigured and evaluates to neutral/100.
type KPIConfig struct {
	Target         *float64
	Warning        *float64
	Critical       *float64
	HigherIsBetter bool
}

// KPIResult is the outcome of evaluating a single metric.
type KPIResult struct {
	Status KPIStatus `json:"status"`
	Score  float64   `json:"score"`
}

// EvaluateKPI maps a raw value onto a 0-100 score by piecewise-linear
// interpolation across the target/warning/critical breakpoints:
// at-or-past target scores 100, warning-to-target maps linearly onto
// 50-100, and past warning maps linearly onto 0-50 down to critical.
// For higher-is-better a missing critical defaults to 0; for
// lower-is-better there is no finite default, so anything past warning
// scores 0.
func EvaluateKPI(value float64, cfg KPIConfig) KPIResult {
	if cfg.Target == nil || cfg.Warning == nil {
		return KPIResult{Status: KPIStatusNeutral, Score: 100}
	}

	target := *cfg.Target
	warning := *cfg.Warning

	if cfg.HigherIsBetter {
		if value >= target {
			return KPIResult{Status: KPIStatusHealthy, Score: 100}
		}
		if value >= warning {
			return KPIResult{Status: KPIStatusWarning, Score: segment(value, warning, target, 50, 100)}
		}
		critical := 0.0
		if cfg.Critical != nil {
			critical = *cfg.Critical
		}
		return KPIResult{Status: KPIStatusCritical, Score: segment(value, critical, warning, 0, 50)}
	}

	// Lower-is-better: mirror image around the same breakpoints. The
	// interpolation below works unchanged because the breakpoint order
	// flips along with the comparison direction.
	if value <= target {
		return KPIResult{Status: KPIStatusHealthy, Score: 100}
	}
	if value <= warning {
		return KPIResult{Status: KPIStatusWarning, Score: segment(value, warning, target, 50, 100)}
	}
	if cfg.Critical == nil {
		return KPIResult{Status: KPIStatusCritical, Score: 0}
	}
	return KPIResult{Status: KPIStatusCritical, Score: segment(value, *cfg.Critical, warning, 0, 50)}
}

// segment linearly maps value across the [lo,hi] breakpoint pair onto
// [outLo,outHi], clamped to the output range. The breakpoints may run
// in either direction; a degenerate pair collapses to outLo.
func segment(value, lo, hi, outLo, outHi float64) float64 {
	if hi == lo {
		return outLo
	}
	score := outLo + (value-lo)/(hi-lo)*(outHi-outLo)
	return math.Max(outLo, math.Min(outHi, score))
}

// HealthStatus buckets an aggregated business health score.
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusAtRisk   HealthStatus = "at_risk"
	HealthStatusCritical HealthStatus = "critical"
)

const (
	healthCriticalBelow = 50.0
	healthAtRiskBelow   = 80.0
	detractorBelow      = 70.0
	maxDetractors       = 3
)

// Detractor names a low-scoring metric dragging down the aggregate.
type Detractor struct {
	MetricID  string    `json:"metric_id"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Status    KPIStatus `json:"status"`
	Diagnosis string    `json:"diagnosis"`
}

// BusinessHealth is the weighted aggregate of all active KPI metrics.
type BusinessHealth struct {
	OverallScore float64      `json:"overall_score"`
	Status       HealthStatus `json:"status"`
	Detractors   []Detractor  `json:"detractors"`
}

// ComputeBusinessHealth aggregates active metrics into a single score.
// Inactive metrics are excluded entirely, never averaged in as neutral.
// Detractors are the lowest-scoring active metrics under 70, capped at
// three, ordered by score ascending with MetricID as the tie-break so
// output is deterministic.
func ComputeBusinessHealth(businessMetrics []models.BusinessMetric) BusinessHealth {
	type scored struct {
		metric *models.BusinessMetric
		result KPIResult
	}

	var active []scored
	var weightedSum, totalWeight float64

	for i := range businessMetrics {
		m := &businessMetrics[i]
		if !m.IsActive {
			continue
		}

		result := EvaluateKPI(m.Value, KPIConfig{
			Target:         m.Target,
			Warning:        m.Warning,
			Critical:       m.Critical,
			HigherIsBetter: m.HigherIsBetter,
		})

		weight := m.Weight
		if weight <= 0 {
			weight = 1
		}
		weightedSum += result.Score * weight
		totalWeight += weight
		active = append(active, scored{metric: m, result: result})
	}

	// No active metrics: nothing is failing, report healthy.
	if totalWeight == 0 {
		return BusinessHealth{OverallScore: 100, Status: HealthStatusHealthy, Detractors: []Detractor{}}
	}

	overall := weightedSum / totalWeight

	status := HealthStatusHealthy
	switch {
	case overall < healthCriticalBelow:
		status = HealthStatusCritical
	case overall < healthAtRiskBelow:
		status = HealthStatusAtRisk
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].result.Score != active[j].result.Score {
			return active[i].result.Score < active[j].result.Score
		}
		return active[i].metric.MetricID < active[j].metric.MetricID
	})

	detractors := []Detractor{}
	for _, s := range active {
		if s.result.Score >= detractorBelow || len(detractors) == maxDetractors {
			break
		}
		detractors = append(detractors, Detractor{
			MetricID:  s.metric.MetricID,
			Name:      s.metric.Name,
			Score:     s.result.Score,
			Status:    s.result.Status,
			Diagnosis: diagnose(s.metric, s.result),
		})
	}

	return BusinessHealth{OverallScore: overall, Status: status, Detractors: detractors}
}

// diagnose renders a one-line explanation of why a metric scores low.
func diagnose(m *models.BusinessMetric, r KPIResult) string {
	direction := "below"
	if !m.HigherIsBetter {
		direction = "above"
	}
	if m.Target != nil {
		return fmt.Sprintf("%s is at %s, %s its target of %s",
			m.Name, formatMetricValue(m.Value, m.Unit), direction, formatMetricValue(*m.Target, m.Unit))
	}
	return fmt.Sprintf("%s is at %s with status %s", m.Name, formatMetricValue(m.Value, m.Unit), r.Status)
}

func formatMetricValue(value float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%.1f", value)
	}
	return fmt.Sprintf("%.1f%s", value, unit)
}
