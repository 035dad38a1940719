package db

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
)

// IsConstraintViolation reports whether err is any SQLite constraint failure
// (NOT NULL, CHECK, UNIQUE, FOREIGN KEY).
func IsConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint
}

// IsForeignKeyViolation reports whether err is a SQLite foreign key failure.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// IsBusy reports whether err is a lock timeout.
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

// Storage messages shown when a SQLite failure reaches the user.
const (
	MsgBusy       = "Cơ sở dữ liệu đang bận, vui lòng thử lại."
	MsgConstraint = "Dữ liệu không thỏa ràng buộc của cơ sở dữ liệu."
)

// Classify turns a storage failure into a dependency error whose message
// names the SQLite condition. Typed errors pass through untouched.
func Classify(err error) *pkgerrors.Error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case IsBusy(err):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, MsgBusy)
	case IsConstraintViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, MsgConstraint)
	}
	return pkgerrors.Classify(err, pkgerrors.CodeDependency)
}
