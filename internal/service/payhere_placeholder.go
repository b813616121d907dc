package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/piano-academy-api/internal/models"
)

const (
	sourcePlaceholder   = "placeholder"
	placeholderMaxDays  = 366
	placeholderLesson   = 55000
	placeholderFeeRatio = "0.033"
)

// Synthetic processor data for demo deployments. Every value derives from the
// calendar date so repeated requests agree with each other.

func placeholderDays(from, to models.Date) []models.Date {
	var days []models.Date
	for d := from; !d.After(to.Time) && len(days) < placeholderMaxDays; d = d.AddDays(1) {
		if d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func placeholderDaily(from, to models.Date) []models.DailySalesSummary {
	var out []models.DailySalesSummary
	for _, d := range placeholderDays(from, to) {
		seed := int64(d.YearDay())
		count := 4 + (seed*7)%9
		total := count * placeholderLesson
		discount := (seed % 3) * 5000
		points := (seed % 4) * 1000
		out = append(out, models.DailySalesSummary{
			ID:               "placeholder-" + d.Format("20060102"),
			SummaryDate:      d,
			TransactionCount: count,
			TotalSales:       total,
			NetSales:         total - discount - points,
			Discount:         discount,
			PointsUsed:       points,
			Source:           sourcePlaceholder,
		})
	}
	return out
}

func placeholderSales(from, to models.Date) []models.SalesRecord {
	var out []models.SalesRecord
	for _, day := range placeholderDaily(from, to) {
		for i := int64(0); i < day.TransactionCount; i++ {
			clock := fmt.Sprintf("%02d:%02d:00", 13+i%8, (i*17)%60)
			discount := int64(0)
			if i == 0 {
				discount = day.Discount
			}
			points := int64(0)
			if i == 1 {
				points = day.PointsUsed
			}
			out = append(out, models.SalesRecord{
				ID:          fmt.Sprintf("%s-%02d", day.ID, i+1),
				SaleDate:    day.SummaryDate,
				PaymentTime: &clock,
				Description: "Lesson",
				TotalAmount: placeholderLesson,
				NetAmount:   placeholderLesson - discount - points,
				Discount:    discount,
				PointsUsed:  points,
				Status:      models.SaleStatusCompleted,
				Source:      sourcePlaceholder,
			})
		}
	}
	// newest first, matching the database ordering
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func placeholderSettlements(from, to models.Date, today models.Date) []models.SettlementRecord {
	fee := decimal.RequireFromString(placeholderFeeRatio)
	daily := placeholderDaily(from, to)
	var out []models.SettlementRecord

	// settlement weeks run Monday to Sunday
	offset := (int(from.Weekday()) + 6) % 7
	for start := from.AddDays(-offset); !start.After(to.Time); start = start.AddDays(7) {
		end := start.AddDays(6)
		var total, count int64
		for _, d := range daily {
			if !d.SummaryDate.Before(start.Time) && !d.SummaryDate.After(end.Time) {
				total += d.NetSales
				count += d.TransactionCount
			}
		}
		if count == 0 {
			continue
		}
		feeAmount := decimal.NewFromInt(total).Mul(fee).Floor().IntPart()
		settled := end.AddDays(3)
		status := "completed"
		if settled.After(today.Time) {
			status = "pending"
		}
		out = append(out, models.SettlementRecord{
			ID:               "placeholder-settlement-" + start.Format("20060102"),
			PeriodStart:      start,
			PeriodEnd:        end,
			SettlementDate:   settled,
			TotalAmount:      total,
			Fee:              feeAmount,
			NetAmount:        total - feeAmount,
			TransactionCount: count,
			Status:           status,
		})
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func placeholderSummary(from, to models.Date) *models.SalesSummary {
	summary := &models.SalesSummary{From: from.String(), To: to.String()}
	for _, d := range placeholderDaily(from, to) {
		summary.Days++
		summary.TransactionCount += d.TransactionCount
		summary.TotalSales += d.TotalSales
		summary.NetSales += d.NetSales
		summary.Discount += d.Discount
		summary.PointsUsed += d.PointsUsed
	}
	return summary
}
