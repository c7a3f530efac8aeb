package accuracy

import (
	"github.com/Alias1177/numbersff/models"
)

// BuildReport runs the metrics engine over every tracked stat.
func BuildReport(sw models.SeasonWeek, records []models.AccuracyRecord) models.PredictionAccuracyReport {
	overall := make(map[models.Stat]models.Metrics, len(models.TrackedStats))
	for _, stat := range models.TrackedStats {
		overall[stat] = ComputeMetrics(PairsFor(records, stat))
	}
	if records == nil {
		records = []models.AccuracyRecord{}
	}
	return models.PredictionAccuracyReport{
		Season:            sw.Season,
		Week:              sw.Week,
		IndividualRecords: records,
		OverallMetrics:    overall,
	}
}

// SummaryMetric is the fantasy_points metric persisted per season/week.
func SummaryMetric(sw models.SeasonWeek, records []models.AccuracyRecord) models.AccuracyMetric {
	return models.AccuracyMetric{
		Season:  sw.Season,
		Week:    sw.Week,
		Stat:    models.FantasyPoints,
		Metrics: ComputeMetrics(PairsFor(records, models.FantasyPoints)),
	}
}

// CompletedWeeks lists the distinct season/weeks present in records,
// in the order they are first seen.
func CompletedWeeks(records []models.AccuracyRecord) []models.SeasonWeek {
	seen := make(map[models.SeasonWeek]bool)
	weeks := make([]models.SeasonWeek, 0)
	for _, r := range records {
		sw := r.SeasonWeek()
		if seen[sw] {
			continue
		}
		seen[sw] = true
		weeks = append(weeks, sw)
	}
	return weeks
}
