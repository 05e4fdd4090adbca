package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/identity"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
)

const maxBodySize = 1 << 20

// Config holds the diagnosis API location.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the external diagnosis API. It serves as the questionnaire's
// catalog source, scorer and result fetcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
	schema     *reportSchema
	logger     *slog.Logger
}

var (
	_ questionnaire.CatalogSource = (*Client)(nil)
	_ questionnaire.Scorer        = (*Client)(nil)
	_ questionnaire.ResultFetcher = (*Client)(nil)
)

// statusError is a non-2xx reply.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("scoring: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	schema, err := newReportSchema()
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		schema:     schema,
		logger:     logger,
	}, nil
}

// FetchQuestions returns the catalog in the order served.
func (c *Client) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	var dtos []questionDTO
	body, err := c.do(ctx, http.MethodGet, "/questions/", nil)
	if err != nil {
		return nil, &questionnaire.ScoringError{Op: "fetch questions", Err: err}
	}
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &questionnaire.ScoringError{Op: "fetch questions", Err: fmt.Errorf("decode: %w", err)}
	}

	questions := make([]models.Question, 0, len(dtos))
	for _, dto := range dtos {
		q, err := dto.toModel()
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Submit posts the answers and then reads the full report of the created diagnosis,
// so the returned Result equals what GetResult yields for the same id.
func (c *Client) Submit(ctx context.Context, submission models.Submission) (*models.Result, error) {
	payload, err := json.Marshal(newSubmissionDTO(submission))
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/diagnosis/", payload)
	if err != nil {
		return nil, &questionnaire.ScoringError{Op: "submit", Err: err}
	}
	var created diagnosisDTO
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &questionnaire.ScoringError{Op: "submit", Err: fmt.Errorf("decode: %w", err)}
	}
	if created.ID <= 0 {
		return nil, &questionnaire.ScoringError{Op: "submit", Err: errors.New("response has no diagnosis id")}
	}

	c.logger.InfoContext(ctx, "Diagnosis created", "diagnosis_id", created.ID, "answers", len(submission.Answers))

	result, err := c.GetResult(ctx, created.ID)
	if err != nil {
		if errors.Is(err, questionnaire.ErrResultNotFound) {
			return nil, &questionnaire.ScoringError{Op: "submit", Err: err}
		}
		return nil, err
	}
	return result, nil
}

// GetResult loads the report of diagnosis id.
func (c *Client) GetResult(ctx context.Context, id int64) (*models.Result, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/diagnosis/%d/report/", id), nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, fmt.Errorf("diagnosis %d: %w", id, questionnaire.ErrResultNotFound)
		}
		return nil, &questionnaire.ScoringError{Op: "load result", Err: err}
	}

	if err := c.schema.Validate(body); err != nil {
		c.logger.WarnContext(ctx, "Rejected diagnosis report", "diagnosis_id", id, "error", err)
		return nil, &questionnaire.ScoringError{Op: "load result", Err: err}
	}

	var dto reportDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &questionnaire.ScoringError{Op: "load result", Err: fmt.Errorf("decode: %w", err)}
	}
	result, err := dto.toModel()
	if err != nil {
		return nil, &questionnaire.ScoringError{Op: "load result", Err: err}
	}
	return result, nil
}

// History lists the user's past diagnoses as partial Results, in the order served.
func (c *Client) History(ctx context.Context) ([]*models.Result, error) {
	body, err := c.do(ctx, http.MethodGet, "/diagnosis/", nil)
	if err != nil {
		return nil, &questionnaire.ScoringError{Op: "history", Err: err}
	}
	var dtos []diagnosisDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &questionnaire.ScoringError{Op: "history", Err: fmt.Errorf("decode: %w", err)}
	}

	results := make([]*models.Result, 0, len(dtos))
	for _, dto := range dtos {
		r, err := dto.toModel()
		if err != nil {
			return nil, &questionnaire.ScoringError{Op: "history", Err: fmt.Errorf("diagnosis %d: %w", dto.ID, err)}
		}
		results = append(results, r)
	}
	return results, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := identity.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.DebugContext(ctx, "Diagnosis API call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
