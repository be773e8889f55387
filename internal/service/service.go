// Package service implements the company-scoped business operations. Every
// lookup filters on company_id, and every multi-row invariant is kept inside
// one database transaction.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/pkg/broker"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

// publish sends an event after commit. Delivery failures never fail the
// request that produced the event.
func publish(ctx context.Context, pub broker.Publisher, subject, event string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, subject, payload); err != nil {
		logger.Ctx(ctx).Warn("Failed to publish event",
			zap.String("event", event),
			zap.String("subject", subject),
			zap.Error(err))
		prometheus.RecordEventPublishError(event)
	}
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}

// findScoped loads one row by id within a company
func findScoped(tx *gorm.DB, dest interface{}, companyID, id uint, resource string) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	return notFound(tx.Where("company_id = ? AND id = ?", companyID, id).First(dest).Error, resource)
}

// forUpdate row-locks the selected rows until the transaction ends. SQLite
// has no row locks and its dialector drops the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// checkParties verifies that the customer and optional project belong to the company
func checkParties(tx *gorm.DB, companyID, customerID uint, projectID *uint) error {
	if customerID == 0 {
		return apperr.NewValidationError("customer_id", "is required")
	}
	if err := findScoped(tx, &model.Customer{}, companyID, customerID, "customer"); err != nil {
		return err
	}
	if projectID != nil {
		if err := findScoped(tx, &model.Project{}, companyID, *projectID, "project"); err != nil {
			return err
		}
	}
	return nil
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
