package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ragTuning mirrors RagConfig with pointers so absent keys keep the env value.
type ragTuning struct {
	MaxTopK           *int     `yaml:"max_top_k"`
	SearchTopK        *int     `yaml:"search_top_k"`
	SearchMinScore    *float64 `yaml:"search_min_score"`
	QATopK            *int     `yaml:"qa_top_k"`
	QAMinScore        *float64 `yaml:"qa_min_score"`
	ContextCharBudget *int     `yaml:"context_char_budget"`
	HistoryTurns      *int     `yaml:"history_turns"`
	AnswerTemperature *float64 `yaml:"answer_temperature"`
}

// LoadTuningFile overlays values present in a YAML file onto r.
func (r *RagConfig) LoadTuningFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var t ragTuning
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setInt(&r.MaxTopK, t.MaxTopK)
	setInt(&r.SearchTopK, t.SearchTopK)
	setFloat(&r.SearchMinScore, t.SearchMinScore)
	setInt(&r.QATopK, t.QATopK)
	setFloat(&r.QAMinScore, t.QAMinScore)
	setInt(&r.ContextCharBudget, t.ContextCharBudget)
	setInt(&r.HistoryTurns, t.HistoryTurns)
	setFloat(&r.AnswerTemperature, t.AnswerTemperature)
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
