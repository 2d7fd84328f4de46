package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insertEvent(ctx, tableSession,
		[]string{"session_id", "action", "grade", "settings", "questions_served", "correct_answers", "duration_secs"},
		[]any{data.SessionID, data.Action, data.Grade, data.Settings, data.QuestionsServed, data.CorrectAnswers, data.DurationSecs},
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.insertEvent(ctx, tableAnswer,
		[]string{"session_id", "question_id", "grade", "question_text", "correct_answer", "selected_answer", "correct", "time_ms"},
		[]any{data.SessionID, data.QuestionID, data.Grade, data.QuestionText, data.CorrectAnswer, data.SelectedAnswer, data.Correct, data.TimeMs},
	)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	b := builder()
	sel := b.Select("session_id", "action", "grade", "timestamp", "questions_served", "correct_answers", "duration_secs").
		From(b.Table(tableSession)).
		Where(entsql.In("action", ActionEnd, ActionAbandon)).
		OrderBy(entsql.Desc("sequence"))
	query, args := applyOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var rec SessionSummaryRecord
		if err := rows.Scan(&rec.SessionID, &rec.Action, &rec.Grade, &rec.Timestamp,
			&rec.QuestionsServed, &rec.CorrectAnswers, &rec.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	return records, nil
}

func (r *eventRepo) QueryAnswerEvents(ctx context.Context, sessionID string) ([]AnswerRecord, error) {
	b := builder()
	query, args := b.Select("sequence", "timestamp", "session_id", "question_id", "grade",
		"question_text", "correct_answer", "selected_answer", "correct", "time_ms").
		From(b.Table(tableAnswer)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Asc("sequence")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var records []AnswerRecord
	for rows.Next() {
		var rec AnswerRecord
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.QuestionID, &rec.Grade,
			&rec.QuestionText, &rec.CorrectAnswer, &rec.SelectedAnswer, &rec.Correct, &rec.TimeMs); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	return records, nil
}
