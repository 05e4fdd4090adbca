package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
)

// Wire types of the diagnosis API. Field names are fixed by the collaborator.

type questionDTO struct {
	ID        int    `json:"id_pregunta"`
	Text      string `json:"texto_pregunta"`
	Section   string `json:"seccion"`
	Domain    string `json:"dominio"`
	Subdomain string `json:"subdominio"`
	Type      string `json:"tipo_pregunta"`
}

type answerDTO struct {
	QuestionID int             `json:"id_pregunta"`
	Value      models.RawValue `json:"valor_respuesta_cruda"`
}

type submissionDTO struct {
	Answers []answerDTO `json:"respuestas"`
}

// diagnosisDTO is both the POST /diagnosis/ response and a history item.
type diagnosisDTO struct {
	ID              int64   `json:"id_diagnostico"`
	Date            string  `json:"fecha_diagnostico"`
	Level           string  `json:"nivel_madurez_predicho"`
	DigitalScore    float64 `json:"puntaje_cap_digital"`
	LeadershipScore float64 `json:"puntaje_cap_liderazgo"`
}

type factorDTO struct {
	QuestionRef questionRef `json:"pregunta_id"`
	Title       string      `json:"titulo"`
	Weight      float64     `json:"peso_impacto"`
	Why         string      `json:"porque"`
	Action      *string     `json:"accion"`
}

type reportDTO struct {
	ID           int64              `json:"id_diagnostico"`
	Date         string             `json:"fecha_diagnostico"`
	Level        string             `json:"nivel_madurez_predicho"`
	Potential    float64            `json:"potencial_avance"`
	Improvements []factorDTO        `json:"areas_mejora_prioritarias"`
	Strengths    []factorDTO        `json:"fortalezas_a_mantener"`
	Domains      map[string]float64 `json:"desglose_dominios"`
}

// questionRef accepts the question reference as either a string or a number.
type questionRef string

func (r *questionRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = questionRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pregunta_id: %w", err)
	}
	*r = questionRef(n.String())
	return nil
}

// Domain breakdown keys used for history items, which only carry two aggregate scores.
const (
	DomainDigitalCapability    = "Capacidad Digital"
	DomainLeadershipCapability = "Capacidad de Liderazgo"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp accepts RFC3339 and naive ISO-8601; naive values are UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (q questionDTO) toModel() (models.Question, error) {
	at, err := models.ParseAnswerType(q.Type)
	if err != nil {
		return models.Question{}, fmt.Errorf("question %d: %w", q.ID, err)
	}
	return models.Question{
		ID:         models.QuestionID(q.ID),
		Text:       q.Text,
		Section:    q.Section,
		Domain:     q.Domain,
		Subdomain:  q.Subdomain,
		AnswerType: at,
	}, nil
}

func newSubmissionDTO(s models.Submission) submissionDTO {
	dto := submissionDTO{Answers: make([]answerDTO, len(s.Answers))}
	for i, a := range s.Answers {
		dto.Answers[i] = answerDTO{QuestionID: int(a.QuestionID), Value: a.Value}
	}
	return dto
}

func (f factorDTO) toModel() models.ImpactFactor {
	factor := models.ImpactFactor{
		QuestionRef: string(f.QuestionRef),
		Label:       f.Title,
		Weight:      f.Weight,
		Explanation: f.Why,
	}
	if f.Action != nil {
		factor.RecommendedAction = *f.Action
	}
	return factor
}

func factorsToModel(in []factorDTO) []models.ImpactFactor {
	out := make([]models.ImpactFactor, len(in))
	for i, f := range in {
		out[i] = f.toModel()
	}
	return out
}

func (r reportDTO) toModel() (*models.Result, error) {
	ts, err := parseTimestamp(r.Date)
	if err != nil {
		return nil, err
	}
	level, err := models.ParseMaturityLevel(r.Level)
	if err != nil {
		return nil, err
	}
	domains := make(map[string]float64, len(r.Domains))
	for k, v := range r.Domains {
		domains[k] = v
	}
	return &models.Result{
		ID:                    r.ID,
		Timestamp:             ts,
		PredictedLevel:        level,
		SuccessProbability:    r.Potential,
		DomainBreakdown:       domains,
		TopImprovementFactors: factorsToModel(r.Improvements),
		TopStrengthFactors:    factorsToModel(r.Strengths),
	}, nil
}

// toModel maps a history item to a partial Result without factors.
func (d diagnosisDTO) toModel() (*models.Result, error) {
	ts, err := parseTimestamp(d.Date)
	if err != nil {
		return nil, err
	}
	level, err := models.ParseMaturityLevel(d.Level)
	if err != nil {
		return nil, err
	}
	return &models.Result{
		ID:             d.ID,
		Timestamp:      ts,
		PredictedLevel: level,
		DomainBreakdown: map[string]float64{
			DomainDigitalCapability:    d.DigitalScore,
			DomainLeadershipCapability: d.LeadershipScore,
		},
		TopImprovementFactors: []models.ImpactFactor{},
		TopStrengthFactors:    []models.ImpactFactor{},
	}, nil
}
