// Package backend builds the spreadsheet mirror selected by configuration.
package backend

import (
	"context"

	"ledger/internal/sheets"
)

type CleanupFunc func() error

// MirrorResult holds the mirror, which is nil for MirrorNone.
type MirrorResult struct {
	Mirror  sheets.TransactionMirror
	Cleanup CleanupFunc
}

type Factory interface {
	CreateMirror(ctx context.Context, config Config) (*MirrorResult, error)
}

type Config struct {
	Type MirrorType

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

type MirrorType string

const (
	MirrorNone   MirrorType = "none"
	MirrorMemory MirrorType = "memory"
	MirrorSheets MirrorType = "sheets"
)

func (mt MirrorType) String() string {
	return string(mt)
}

func (mt MirrorType) IsValid() bool {
	switch mt {
	case MirrorNone, MirrorMemory, MirrorSheets:
		return true
	default:
		return false
	}
}
