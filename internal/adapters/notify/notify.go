// Package notify delivers counselor alerts raised by risk assessments.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// ErrMissingTopic is returned when an SNS notifier has no topic ARN.
var ErrMissingTopic = errors.New("sns topic arn is required")

// Alert is the payload sent to counselors when an assessment raises an alert.
type Alert struct {
	RecordID       string          `json:"record_id"`
	SubjectID      string          `json:"subject_id"`
	DisplayName    string          `json:"display_name,omitempty"`
	PredictedLabel model.RiskLevel `json:"predicted_label"`
	Confidence     float64         `json:"confidence"`
	BurnoutRisk    float64         `json:"burnout_risk"`
	Recommendation string          `json:"recommendation"`
	MatchedRules   []string        `json:"matched_rules"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AlertFromRecord builds an Alert for rec.
func AlertFromRecord(rec model.AssessmentRecord, displayName string) Alert {
	return Alert{
		RecordID:       rec.ID,
		SubjectID:      rec.SubjectID,
		DisplayName:    displayName,
		PredictedLabel: rec.PredictedLabel,
		Confidence:     rec.Confidence,
		BurnoutRisk:    rec.BurnoutRisk,
		Recommendation: rec.Recommendation,
		MatchedRules:   append([]string(nil), rec.MatchedRules...),
		CreatedAt:      rec.CreatedAt,
	}
}

// Notifier delivers alerts.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// LogNotifier writes alerts to the structured log. It is the default when no
// external channel is configured.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.Nop()
	}
	return &LogNotifier{logger: l}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, a Alert) error {
	n.logger.Warn(ctx, "counselor alert",
		logger.String("record_id", a.RecordID),
		logger.String("subject_id", a.SubjectID),
		logger.String("predicted_label", string(a.PredictedLabel)),
		logger.Float64("confidence", a.Confidence),
		logger.Float64("burnout_risk", a.BurnoutRisk),
		logger.String("recommendation", a.Recommendation),
	)
	return nil
}
