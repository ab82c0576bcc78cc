package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mcqengine/internal/models"
)

// ErrNotFound is returned when no run has the requested ID
var ErrNotFound = errors.New("run not found")

// StoreReport saves the run summary and its accepted MCQs in one transaction
// and returns the run ID.
func (db *DB) StoreReport(ctx context.Context, report models.BatchReport) (string, error) {
	if report.RunID == "" {
		return "", errors.New("report has no run ID")
	}
	rejections, err := encodeRejections(report.Rejections)
	if err != nil {
		return "", err
	}

	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO mcq_runs (run_id, accepted, rejected, warnings, rejections) VALUES ($1, $2, $3, $4, $5)`,
			report.RunID, report.Accepted, report.Rejected, report.Warnings, rejections,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		batch := &pgx.Batch{}
		for i, m := range report.MCQs {
			batch.Queue(
				`INSERT INTO mcqs (run_id, position, reasoning, statement, options, answer, confidence) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				report.RunID, i, m.Reasoning, m.Statement, optionsOrEmpty(m.Options), m.Answer, m.Confidence,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert mcqs: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return report.RunID, nil
}

// GetReport loads a stored run with its MCQs in section order.
func (db *DB) GetReport(ctx context.Context, runID string) (models.BatchReport, error) {
	report := models.BatchReport{RunID: runID}
	var rejections []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT accepted, rejected, warnings, rejections FROM mcq_runs WHERE run_id = $1`, runID,
	).Scan(&report.Accepted, &report.Rejected, &report.Warnings, &rejections)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.BatchReport{}, ErrNotFound
	}
	if err != nil {
		return models.BatchReport{}, fmt.Errorf("get run: %w", err)
	}
	if report.Rejections, err = decodeRejections(rejections); err != nil {
		return models.BatchReport{}, err
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT reasoning, statement, options, answer, confidence FROM mcqs WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return models.BatchReport{}, fmt.Errorf("list mcqs: %w", err)
	}
	report.MCQs, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.MCQ, error) {
		var m models.MCQ
		err := row.Scan(&m.Reasoning, &m.Statement, &m.Options, &m.Answer, &m.Confidence)
		return m, err
	})
	if err != nil {
		return models.BatchReport{}, fmt.Errorf("scan mcqs: %w", err)
	}
	if report.MCQs == nil {
		report.MCQs = []models.MCQ{}
	}
	return report, nil
}

func encodeRejections(r []models.Rejection) (string, error) {
	if r == nil {
		r = []models.Rejection{}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode rejections: %w", err)
	}
	return string(b), nil
}

func decodeRejections(b []byte) ([]models.Rejection, error) {
	var r []models.Rejection
	if len(b) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode rejections: %w", err)
	}
	if len(r) == 0 {
		return nil, nil
	}
	return r, nil
}

func optionsOrEmpty(o []string) []string {
	if o == nil {
		return []string{}
	}
	return o
}
