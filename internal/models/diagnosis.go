package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// MaturityLevel is the digital maturity stage predicted by the scoring collaborator.
// Labels are kept exactly as the collaborator sends them.
type MaturityLevel string

const (
	LevelBeginner     MaturityLevel = "Principiante"
	LevelConservative MaturityLevel = "Conservador"
	LevelFollower     MaturityLevel = "Seguidor"
	LevelMaster       MaturityLevel = "Maestro"
)

// MaturityLevels lists the closed label set from least to most mature.
var MaturityLevels = []MaturityLevel{LevelBeginner, LevelConservative, LevelFollower, LevelMaster}

// ParseMaturityLevel rejects labels outside the closed set.
func ParseMaturityLevel(s string) (MaturityLevel, error) {
	for _, l := range MaturityLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown maturity level %q", s)
}

// Description is the human readable explanation shown next to the level.
func (l MaturityLevel) Description() string {
	switch l {
	case LevelMaster:
		return "Su empresa lidera la transformación digital en su sector"
	case LevelFollower:
		return "Su empresa está adoptando activamente tecnologías digitales"
	case LevelConservative:
		return "Su empresa está comenzando su camino hacia la digitalización"
	default:
		return "Su empresa tiene grandes oportunidades de crecimiento digital"
	}
}

// ImpactFactor is one explained driver of the prediction.
type ImpactFactor struct {
	QuestionRef       string  `json:"question_ref"`
	Label             string  `json:"label"`
	Weight            float64 `json:"weight"`
	Explanation       string  `json:"explanation"`
	RecommendedAction string  `json:"recommended_action,omitempty"`
}

// Result is a scored diagnosis. It is replaced wholesale, never patched.
type Result struct {
	ID                    int64              `json:"id"`
	Timestamp             time.Time          `json:"timestamp"`
	PredictedLevel        MaturityLevel      `json:"predicted_level"`
	SuccessProbability    float64            `json:"success_probability"`
	DomainBreakdown       map[string]float64 `json:"domain_breakdown"`
	TopImprovementFactors []ImpactFactor     `json:"top_improvement_factors"`
	TopStrengthFactors    []ImpactFactor     `json:"top_strength_factors"`
}

// Clone returns a deep copy so callers cannot mutate a held result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	if r.DomainBreakdown != nil {
		c.DomainBreakdown = make(map[string]float64, len(r.DomainBreakdown))
		for k, v := range r.DomainBreakdown {
			c.DomainBreakdown[k] = v
		}
	}
	if r.TopImprovementFactors != nil {
		c.TopImprovementFactors = append([]ImpactFactor(nil), r.TopImprovementFactors...)
	}
	if r.TopStrengthFactors != nil {
		c.TopStrengthFactors = append([]ImpactFactor(nil), r.TopStrengthFactors...)
	}
	return &c
}

// DiagnosisRecord archives a Result received by a user.
type DiagnosisRecord struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	UserID             string         `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_diagnosis_user_result"`
	ResultID           int64          `json:"result_id" gorm:"not null;uniqueIndex:idx_diagnosis_user_result"`
	PredictedLevel     MaturityLevel  `json:"predicted_level" gorm:"not null;size:32;index"`
	SuccessProbability float64        `json:"success_probability"`
	DiagnosedAt        time.Time      `json:"diagnosed_at" gorm:"index"`
	Payload            datatypes.JSON `json:"payload" gorm:"type:jsonb"` // Result

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DiagnosisRecord) TableName() string {
	return "diagnosis_records"
}
