package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/tour-reservation/internal/model"
)

// partialRefundRate applies when cancelling the day before departure.
var partialRefundRate = decimal.RequireFromString("0.6")

// ComputeRefund returns how much of price is refunded when a reservation
// for an event starting on eventStart is cancelled at now.  Both instants
// are reduced to their UTC calendar day:
//
//	start after tomorrow  full price
//	start tomorrow        floor(price * 0.6)
//	start today or past   model.ErrCancellationWindowClosed
func ComputeRefund(eventStart, now time.Time, price int64) (int64, error) {
	start, today := calendarDay(eventStart), calendarDay(now)
	switch {
	case start.After(today.AddDate(0, 0, 1)):
		return price, nil
	case start.After(today):
		return decimal.NewFromInt(price).Mul(partialRefundRate).Floor().IntPart(), nil
	default:
		return 0, model.ErrCancellationWindowClosed
	}
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
