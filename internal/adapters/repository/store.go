// Package repository stores the append-only sheets the service works on:
// edition backing logs, the audit log and the subscriber registry.
package repository

import (
	"context"

	"github.com/okian/poprzeczka/internal/domain/model"
)

// Store reads and appends rows of named sheets.
type Store interface {
	// ReadAll returns the header row and every data row of sheet in append
	// order. Returns ErrSheetNotFound if the sheet does not exist.
	ReadAll(ctx context.Context, sheet string) (model.Table, error)

	// Append adds one row to sheet. Returns ErrSheetNotFound if the sheet
	// does not exist.
	Append(ctx context.Context, sheet string, row []string) error

	// EnsureSheet creates sheet with headers if it does not exist yet. An
	// existing sheet keeps its headers.
	EnsureSheet(ctx context.Context, sheet string, headers []string) error
}
