package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mbolis/quick-forms/model"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) CreateForm(ctx context.Context, owner string, form model.Form) (model.Form, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return form, fmt.Errorf("begin_tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	form.Owner = owner
	form.PublicID = uuid.NewString()
	form.Version = 1
	form.Published = false
	form.CreatedAt, form.UpdatedAt = now, now

	err = tx.QueryRowContext(ctx, `
		INSERT INTO form (public_id, owner, version, title, description, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		form.PublicID,
		owner,
		form.Version,
		form.Title,
		form.Description,
		form.Published,
		form.CreatedAt,
		form.UpdatedAt,
	).Scan(&form.ID)
	if err != nil {
		return form, fmt.Errorf("insert_form: %w", err)
	}

	if err = insertFields(ctx, tx, form.ID, form.Fields); err != nil {
		return form, err
	}

	if err = tx.Commit(); err != nil {
		return form, fmt.Errorf("commit: %w", err)
	}
	return form, nil
}

func (db *DB) ListForms(ctx context.Context, owner string) ([]model.FormSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			f.id, f.public_id, f.version, f.title, f.description, f.published, f.created_at,
			(SELECT COUNT(*) FROM submission s WHERE s.form_id = f.id),
			(SELECT COUNT(*) FROM form_view v WHERE v.form_id = f.id)
		FROM form f
		WHERE f.owner = $1
		ORDER BY f.created_at DESC, f.id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list_forms: %w", err)
	}
	defer rows.Close()

	forms := []model.FormSummary{}
	for rows.Next() {
		f := model.FormSummary{}
		err = rows.Scan(
			&f.ID, &f.PublicID, &f.Version, &f.Title, &f.Description, &f.Published, &f.CreatedAt,
			&f.Submissions, &f.Views,
		)
		if err != nil {
			return nil, fmt.Errorf("list_forms.scan: %w", err)
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// GetForm loads a form with its fields. Forms of other owners are
// reported as ErrNotFound.
func (db *DB) GetForm(ctx context.Context, owner string, id int) (model.Form, error) {
	form := model.Form{}
	err := db.QueryRowContext(ctx, `
		SELECT id, public_id, owner, version, title, description, published, created_at, updated_at
		FROM form
		WHERE id = $1
			AND owner = $2`,
		id,
		owner,
	).Scan(
		&form.ID, &form.PublicID, &form.Owner, &form.Version, &form.Title, &form.Description,
		&form.Published, &form.CreatedAt, &form.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return form, ErrNotFound
	}
	if err != nil {
		return form, fmt.Errorf("get_form: %w", err)
	}

	form.Fields, err = loadFields(ctx, db, form.ID)
	return form, err
}

// GetPublishedForm loads a form by its public id, if it is published.
func (db *DB) GetPublishedForm(ctx context.Context, publicID string) (model.Form, error) {
	form := model.Form{}
	err := db.QueryRowContext(ctx, `
		SELECT id, public_id, version, title, description, published, created_at, updated_at
		FROM form
		WHERE public_id = $1
			AND published = $2`,
		publicID,
		true,
	).Scan(
		&form.ID, &form.PublicID, &form.Version, &form.Title, &form.Description,
		&form.Published, &form.CreatedAt, &form.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return form, ErrNotFound
	}
	if err != nil {
		return form, fmt.Errorf("get_published_form: %w", err)
	}

	form.Fields, err = loadFields(ctx, db, form.ID)
	return form, err
}

// UpdateForm replaces title, description and fields. The form version acts
// as an optimistic lock: a stale version yields ErrConflict.
func (db *DB) UpdateForm(ctx context.Context, owner string, form model.Form) (version int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin_tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE form
		SET
			title = $1,
			description = $2,
			version = version+1,
			updated_at = $3
		WHERE id = $4
			AND owner = $5
			AND version = $6`,
		form.Title,
		form.Description,
		time.Now().UTC(),
		form.ID,
		owner,
		form.Version,
	)
	if err != nil {
		return 0, fmt.Errorf("update_form: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update_form.verify: %w", err)
	}
	if n < 1 {
		var exists bool
		err = tx.QueryRowContext(ctx, `
			SELECT 1 FROM form
			WHERE id = $1
				AND owner = $2`,
			form.ID,
			owner,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("update_form.exists: %w", err)
		}
		return 0, ErrConflict
	}

	// recreate all fields
	_, err = tx.ExecContext(ctx, `
		DELETE FROM form_field
		WHERE form_id = $1`,
		form.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update_form.delete_fields: %w", err)
	}
	if err = insertFields(ctx, tx, form.ID, form.Fields); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return form.Version + 1, nil
}

func (db *DB) SetPublished(ctx context.Context, owner string, id int, published bool) error {
	res, err := db.ExecContext(ctx, `
		UPDATE form
		SET published = $1, updated_at = $2
		WHERE id = $3
			AND owner = $4`,
		published,
		time.Now().UTC(),
		id,
		owner,
	)
	if err != nil {
		return fmt.Errorf("set_published: %w", err)
	}
	return expectRows(res)
}

// DeleteForm removes a form; fields, submissions and views cascade.
func (db *DB) DeleteForm(ctx context.Context, owner string, id int) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM form
		WHERE id = $1
			AND owner = $2`,
		id,
		owner,
	)
	if err != nil {
		return fmt.Errorf("delete_form: %w", err)
	}
	return expectRows(res)
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows_affected: %w", err)
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

func insertFields(ctx context.Context, tx *sql.Tx, formID int, fields []model.Field) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO form_field (form_id, position, field_id, type, label, placeholder, options, validation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("insert_fields.prepare: %w", err)
	}
	defer stmt.Close()

	for i, f := range fields {
		var optionsJson, validationJson []byte
		if f.Options != nil {
			optionsJson, err = json.Marshal(f.Options)
			if err != nil {
				return fmt.Errorf("insert_fields.options: %w", err)
			}
		}
		if f.Validation != nil {
			validationJson, err = json.Marshal(f.Validation)
			if err != nil {
				return fmt.Errorf("insert_fields.validation: %w", err)
			}
		}

		_, err = stmt.ExecContext(ctx, formID, i, f.ID, f.Type, f.Label, f.Placeholder, string(optionsJson), string(validationJson))
		if err != nil {
			return fmt.Errorf("insert_fields.insert: %w", err)
		}
	}
	return nil
}

func loadFields(ctx context.Context, q queryer, formID int) ([]model.Field, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT field_id, type, label, placeholder, options, validation
		FROM form_field
		WHERE form_id = $1
		ORDER BY position`,
		formID,
	)
	if err != nil {
		return nil, fmt.Errorf("load_fields: %w", err)
	}
	defer rows.Close()

	fields := []model.Field{}
	for rows.Next() {
		f := model.Field{}
		var opts, validation string
		err = rows.Scan(&f.ID, &f.Type, &f.Label, &f.Placeholder, &opts, &validation)
		if err != nil {
			return nil, fmt.Errorf("load_fields.scan: %w", err)
		}

		if opts != "" {
			if err = json.Unmarshal([]byte(opts), &f.Options); err != nil {
				return nil, fmt.Errorf("load_fields.parse_options: %w", err)
			}
		}
		if validation != "" {
			f.Validation = &model.FieldValidation{}
			if err = json.Unmarshal([]byte(validation), f.Validation); err != nil {
				return nil, fmt.Errorf("load_fields.parse_validation: %w", err)
			}
		}

		fields = append(fields, f)
	}
	return fields, rows.Err()
}
