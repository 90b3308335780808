package ratings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
)

// Summary is the derived rating written onto a product.
type Summary struct {
	ProductID   uuid.UUID `json:"productId"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"reviewCount"`
}

// Aggregator recomputes a product's rating from its approved reviews.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Recompute averages approved reviews from scratch, rounds to one decimal and
// stores rating and reviewCount on the product. No approved reviews yields 0/0.
func (a *Aggregator) Recompute(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (Summary, error) {
	if tx == nil {
		return Summary{}, errors.New("transaction required")
	}
	var agg struct {
		Total int64
		Count int64
	}
	err := tx.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(SUM(rating), 0) AS total, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, enums.ReviewStatusApproved).
		Scan(&agg).Error
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate reviews")
	}

	summary := Summary{ProductID: productID, ReviewCount: int(agg.Count)}
	if agg.Count > 0 {
		summary.Rating = Average(agg.Total, agg.Count)
	}

	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"rating":       summary.Rating,
			"review_count": summary.ReviewCount,
		})
	if res.Error != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "store product rating")
	}
	if res.RowsAffected == 0 {
		return Summary{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return summary, nil
}

// Average returns total/count rounded half away from zero to one decimal.
func Average(total, count int64) float64 {
	if count <= 0 {
		return 0
	}
	return decimal.NewFromInt(total).
		DivRound(decimal.NewFromInt(count), 4).
		Round(1).
		InexactFloat64()
}
