package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

// The upsert increments the counter atomically, so concurrent creators in
// the same company always receive distinct values.
const nextSequenceSQL = `INSERT INTO document_sequences (company_id, kind, current_sequence, created_at, updated_at)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT (company_id, kind) DO UPDATE
SET current_sequence = document_sequences.current_sequence + 1, updated_at = excluded.updated_at
RETURNING current_sequence`

// NextDocumentNumber reserves the next number for kind within the company.
// It must run inside the transaction that creates the document; a rolled
// back creation does not consume a number.
func NextDocumentNumber(tx *gorm.DB, companyID uint, kind model.DocumentKind) (string, error) {
	defer prometheus.TrackDBOperation("sequence")(time.Now())

	now := time.Now()
	var seq int64
	if err := tx.Raw(nextSequenceSQL, companyID, string(kind), now, now).Scan(&seq).Error; err != nil {
		return "", fmt.Errorf("reserve %s number: %w", kind, err)
	}
	if seq <= 0 {
		return "", fmt.Errorf("reserve %s number: sequence returned %d", kind, seq)
	}
	return kind.FormatNumber(seq), nil
}
