package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/quick-forms/model"
)

func (db *DB) InsertSubmission(ctx context.Context, formID int, sub model.Submission) (id int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin_tx: %w", err)
	}
	defer tx.Rollback()

	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO submission (form_id, created_at, ip) VALUES ($1, $2, $3)
		RETURNING id`,
		formID,
		sub.CreatedAt.UTC(),
		sub.IP,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert_submission: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (submission_id, field_id, value)
		VALUES ($1, $2, $3)`)
	if err != nil {
		return 0, fmt.Errorf("insert_submission.answers.prepare: %w", err)
	}
	defer stmt.Close()

	for _, a := range sub.Answers {
		valueJson, err := json.Marshal(a.Value)
		if err != nil {
			return 0, fmt.Errorf("insert_submission.answers.marshal: %w", err)
		}
		_, err = stmt.ExecContext(ctx, id, a.FieldID, string(valueJson))
		if err != nil {
			return 0, fmt.Errorf("insert_submission.answers.insert: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (db *DB) InsertView(ctx context.Context, formID int, at time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO form_view (form_id, created_at) VALUES ($1, $2)`,
		formID,
		at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert_view: %w", err)
	}
	return nil
}

// FetchSubmissions returns the submissions of a form created within the
// inclusive date range, oldest first, with their answers. It fails with
// ErrNotFound when the form does not exist or belongs to another owner.
func (db *DB) FetchSubmissions(ctx context.Context, formID int, owner string, rng model.DateRange) ([]model.Submission, error) {
	if err := db.checkOwner(ctx, formID, owner); err != nil {
		return nil, err
	}

	where, args := rangeFilter("s.created_at", formID, rng)
	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.ip, a.field_id, a.value
		FROM submission s
		LEFT OUTER JOIN answer a ON (s.id = a.submission_id)
		WHERE s.form_id = $1`+where+`
		ORDER BY s.created_at, s.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch_submissions: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s := model.Submission{FormID: formID}
		var fieldID, value sql.NullString
		err = rows.Scan(&s.ID, &s.CreatedAt, &s.IP, &fieldID, &value)
		if err != nil {
			return nil, fmt.Errorf("fetch_submissions.scan: %w", err)
		}

		last := len(submissions) - 1
		if last < 0 || submissions[last].ID != s.ID {
			s.Answers = []model.Answer{}
			submissions = append(submissions, s)
			last++
		}
		if !fieldID.Valid {
			continue
		}

		a := model.Answer{FieldID: fieldID.String}
		// a corrupt value is kept as a null answer rather than failing the fetch
		_ = json.Unmarshal([]byte(value.String), &a.Value)
		submissions[last].Answers = append(submissions[last].Answers, a)
	}
	return submissions, rows.Err()
}

func (db *DB) FetchViews(ctx context.Context, formID int, rng model.DateRange) ([]model.View, error) {
	where, args := rangeFilter("created_at", formID, rng)
	rows, err := db.QueryContext(ctx, `
		SELECT created_at
		FROM form_view
		WHERE form_id = $1`+where+`
		ORDER BY created_at`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch_views: %w", err)
	}
	defer rows.Close()

	views := []model.View{}
	for rows.Next() {
		v := model.View{FormID: formID}
		if err = rows.Scan(&v.CreatedAt); err != nil {
			return nil, fmt.Errorf("fetch_views.scan: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (db *DB) checkOwner(ctx context.Context, formID int, owner string) error {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT 1 FROM form
		WHERE id = $1
			AND owner = $2`,
		formID,
		owner,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check_owner: %w", err)
	}
	return nil
}

// rangeFilter builds the AND clauses for an inclusive date range; the form
// id is always the first argument.
func rangeFilter(column string, formID int, rng model.DateRange) (string, []any) {
	var where strings.Builder
	args := []any{formID}
	if !rng.From.IsZero() {
		args = append(args, rng.From.UTC())
		where.WriteString(" AND " + column + " >= $" + strconv.Itoa(len(args)))
	}
	if !rng.To.IsZero() {
		args = append(args, rng.To.UTC())
		where.WriteString(" AND " + column + " <= $" + strconv.Itoa(len(args)))
	}
	return where.String(), args
}
