package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Thresholds feeding the model recommender.
const (
	LargeDatasetRows       = 10000
	HighDimensionalColumns = 100
	sparseImportance       = 0.01
	baseComplexity         = 0.5
	wideRatio              = 0.1
	lowVariance            = 0.05
	sparseShare            = 0.5
)

// Task types inferred from the suggested target.
const (
	TaskClassification = "classification"
	TaskRegression     = "regression"
	TaskClustering     = "clustering"
)

// RecommenderMetrics is the summary handed to the model recommender.
type RecommenderMetrics struct {
	NumInstances       int     `json:"num_instances"`
	NumFeatures        int     `json:"num_features"`
	AvgImportance      Number  `json:"avg_feature_importance"`
	ImportanceVariance Number  `json:"feature_importance_variance"`
	Sparsity           Number  `json:"sparsity"`
	ComplexityScore    Number  `json:"complexity_score"`
	IsLargeDataset     bool    `json:"is_large_dataset"`
	IsHighDimensional  bool    `json:"is_high_dimensional"`
	TaskType           string  `json:"task_type"`
	Target             *string `json:"target_column"`
}

// Summarize derives recommender metrics from a profile and optional
// per-feature importance scores. Without scores the importance figures are 0.
func Summarize(p *DatasetProfile, importances []float64) RecommenderMetrics {
	m := RecommenderMetrics{
		NumInstances:      p.Rows,
		NumFeatures:       p.Columns,
		IsLargeDataset:    p.Rows > LargeDatasetRows,
		IsHighDimensional: p.Columns > HighDimensionalColumns,
		TaskType:          TaskClustering,
		Target:            p.SuggestedTarget,
	}
	if target := p.Target(); target != "" {
		switch p.TypeOf(target) {
		case Categorical, Text:
			m.TaskType = TaskClassification
		case Numeric:
			m.TaskType = TaskRegression
		}
	}

	var avg, variance, sparsity float64
	if len(importances) > 0 {
		avg, variance = stat.PopMeanVariance(importances, nil)
		low := 0
		for _, v := range importances {
			if v < sparseImportance {
				low++
			}
		}
		sparsity = float64(low) / float64(len(importances))
	}
	m.AvgImportance = Number(avg)
	m.ImportanceVariance = Number(variance)
	m.Sparsity = Number(sparsity)

	score := baseComplexity
	if p.Rows > 0 && float64(p.Columns)/float64(p.Rows) > wideRatio {
		score += 0.2
	}
	if variance < lowVariance {
		score += 0.2
	}
	if sparsity > sparseShare {
		score -= 0.1
	}
	m.ComplexityScore = Number(Round(math.Min(1, math.Max(0, score)), 4))
	return m
}
