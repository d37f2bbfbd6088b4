package clickhouse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"privacyguard/internal/client"
	"privacyguard/internal/risk"
	"privacyguard/internal/util"
)

const insertAssessmentQuery = `
    INSERT INTO risk_assessments (
        user_id, app_name, domain, raw_score, synergy_penalty, url_modifier,
        total_raw, normalized, risk_level, breach_count, assessed_at
    )`

// AssessmentLog appends completed risk assessments to ClickHouse for trend
// analytics. Inserts are best effort; callers log and move on when the
// analytics store is down.
type AssessmentLog struct {
	ch *client.ClickHouseClient
}

func NewAssessmentLog(ch *client.ClickHouseClient) *AssessmentLog {
	return &AssessmentLog{ch: ch}
}

func (l *AssessmentLog) Record(ctx context.Context, userID, appName, domain string, a risk.Assessment, level risk.Level) error {
	if l == nil || l.ch == nil {
		return nil
	}

	row := [][]interface{}{{
		userID, appName, domain,
		int32(a.RawScore), int32(a.SynergyPenalty), int32(a.URLModifier),
		int32(a.TotalRaw), int32(a.Normalized), string(level),
		int32(a.BreachCount), time.Now().UTC(),
	}}

	if err := l.ch.BatchInsert(ctx, insertAssessmentQuery, row); err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}

	util.Debug("Assessment recorded",
		zap.String("user_id", userID),
		zap.String("app_name", appName),
		zap.Int("normalized", a.Normalized))

	return nil
}
