package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	inputs      []*sns.PublishInput
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	return m.PublishFunc(ctx, params, optFns...)
}

func testRecord() model.AssessmentRecord {
	return model.AssessmentRecord{
		ID:        "r-1",
		SubjectID: "s-1",
		Assessment: model.Assessment{
			PredictedLabel: model.LevelHigh,
			Confidence:     85,
			BurnoutRisk:    100,
			Recommendation: "Critical Risk: Immediate counselor intervention recommended.",
			Alert:          true,
			MatchedRules:   []string{"sleep_deprivation"},
		},
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestAlertFromRecord(t *testing.T) {
	rec := testRecord()
	a := AlertFromRecord(rec, "Ada")

	assert.Equal(t, "r-1", a.RecordID)
	assert.Equal(t, "Ada", a.DisplayName)
	assert.Equal(t, model.LevelHigh, a.PredictedLabel)
	assert.Equal(t, 100.0, a.BurnoutRisk)

	rec.MatchedRules[0] = "changed"
	assert.Equal(t, "sleep_deprivation", a.MatchedRules[0])
}

func TestSNSNotifier(t *testing.T) {
	ctx := context.Background()
	topic := "arn:aws:sns:us-east-1:123456789012:wellbeing-alerts"

	t.Run("requires a topic", func(t *testing.T) {
		_, err := NewSNSNotifier(&mockSNS{}, "")
		assert.ErrorIs(t, err, ErrMissingTopic)
	})

	t.Run("publishes alert json", func(t *testing.T) {
		m := &mockSNS{PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
		}}
		n, err := NewSNSNotifier(m, topic)
		require.NoError(t, err)

		require.NoError(t, n.Notify(ctx, AlertFromRecord(testRecord(), "Ada")))
		require.Len(t, m.inputs, 1)

		in := m.inputs[0]
		assert.Equal(t, topic, aws.ToString(in.TopicArn))
		assert.Contains(t, aws.ToString(in.Subject), "High")
		assert.Equal(t, "s-1", aws.ToString(in.MessageAttributes["subject_id"].StringValue))

		var decoded Alert
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &decoded))
		assert.Equal(t, "r-1", decoded.RecordID)
		assert.Equal(t, []string{"sleep_deprivation"}, decoded.MatchedRules)
	})

	t.Run("wraps publish errors", func(t *testing.T) {
		boom := errors.New("throttled")
		m := &mockSNS{PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, boom
		}}
		n, err := NewSNSNotifier(m, topic)
		require.NoError(t, err)

		err = n.Notify(ctx, AlertFromRecord(testRecord(), ""))
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "r-1")
	})
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logger.New(&buf, slog.LevelInfo))

	require.NoError(t, n.Notify(context.Background(), AlertFromRecord(testRecord(), "Ada")))
	assert.Contains(t, buf.String(), "counselor alert")
	assert.Contains(t, buf.String(), "subject_id=s-1")

	assert.NoError(t, NewLogNotifier(nil).Notify(context.Background(), Alert{}))
}
