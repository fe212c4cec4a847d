// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"folio/internal/models"
	"folio/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// translateError maps driver errors onto AppError kinds. Errors that are
// already AppErrors pass through untouched.
func translateError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case isUniqueViolation(err):
		return &models.AppError{
			Code:    models.CodeConflict,
			Message: fmt.Sprintf("%s already exists", resource),
			Err:     err,
		}
	}
	return fmt.Errorf("%s: %w", strings.ToLower(resource), err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// updateVersioned applies values to the row only if its version still
// matches. A stale version yields a CONFLICT error; it is never retried.
func updateVersioned(tx *gorm.DB, model any, entity string, id, version uint, values map[string]any) error {
	values["version"] = version + 1
	res := tx.Model(model).Where("id = ? AND version = ?", id, version).Updates(values)
	if res.Error != nil {
		return translateError(res.Error, entity, id)
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := tx.Model(model).Where("id = ?", id).Count(&exists).Error; err != nil {
			return translateError(err, entity, id)
		}
		if exists == 0 {
			return models.NewNotFoundError(entity, id)
		}
		observability.ConcurrencyConflicts.WithLabelValues(strings.ToLower(entity)).Inc()
		return models.NewConflictError(fmt.Sprintf("%s %d was modified by someone else, reload and try again", entity, id))
	}
	return nil
}

// orderByRecent orders by updated_at with id as a stable tie-break.
func orderByRecent(table string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Order(table + ".updated_at DESC").Order(table + ".id DESC")
	}
}

// excludeBlockedAuthors drops rows whose author is flagged blocked. NULL and
// false both count as not blocked.
func excludeBlockedAuthors(q *gorm.DB, column string) *gorm.DB {
	return q.Where(column+" NOT IN (SELECT id FROM users WHERE blocked = ?)", true)
}

// likePattern builds a case-insensitive substring pattern with LIKE
// metacharacters escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
