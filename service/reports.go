package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"highpurchase/ledger"
	"highpurchase/models"
)

// ===== Collections =====

type MethodTotal struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
	Total  int64  `json:"total"`
}

type CollectionsFilter struct {
	BusinessID uint
	ShopID     *uint
	From       time.Time
	To         time.Time
}

// CollectionsReport sums the money that moved in a window. Collected
// covers confirmed payments only; WalletDeposits counts every wallet
// credit in the window, prepaid top-ups and confirmed-payment credits
// alike.
type CollectionsReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Collected      []MethodTotal `json:"collected"`
	CollectedTotal int64         `json:"collected_total"`

	PendingCount  int64 `json:"pending_count"`
	PendingTotal  int64 `json:"pending_total"`
	RejectedCount int64 `json:"rejected_count"`
	RejectedTotal int64 `json:"rejected_total"`

	NewPurchaseCount int64 `json:"new_purchase_count"`
	NewPurchaseValue int64 `json:"new_purchase_value"`

	WalletDeposits int64 `json:"wallet_deposits"`
}

// ===== Receivables aging =====

type AgingRow struct {
	PurchaseID   uint      `json:"purchase_id"`
	Number       string    `json:"number"`
	ShopID       uint      `json:"shop_id"`
	CustomerID   uint      `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	DueDate      time.Time `json:"due_date"`
	GraceDays    int       `json:"grace_days"`
	DaysOverdue  int       `json:"days_overdue"`
	Outstanding  int64     `json:"outstanding"`
	Bucket       string    `json:"bucket"`
	LateFee      int64     `json:"late_fee_estimate"`
}

type AgingBucket struct {
	Bucket      string `json:"bucket"`
	Count       int    `json:"count"`
	Outstanding int64  `json:"outstanding"`
	LateFees    int64  `json:"late_fees"`
}

type AgingReport struct {
	AsOf    time.Time     `json:"as_of"`
	Buckets []AgingBucket `json:"buckets"`
	Rows    []AgingRow    `json:"rows"`
}

// ===== Risk scoring =====

type RiskRow struct {
	CustomerID    uint   `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	Phone         string `json:"phone"`
	OpenPurchases int    `json:"open_purchases"`
	Outstanding   int64  `json:"outstanding"`
	TotalValue    int64  `json:"total_value"`
	MaxDaysLate   int    `json:"max_days_late"`
	Score         int    `json:"score"`
	Band          string `json:"band"`
}

// ===== Service =====

type Service interface {
	// Collections sums payments, new purchases and wallet inflows over
	// a period, per shop or across the business.
	Collections(ctx context.Context, f CollectionsFilter) (CollectionsReport, error)

	// Aging buckets every open balance by days past its grace window
	// and estimates the late fee the effective policy would charge.
	Aging(ctx context.Context, businessID uint, shopID *uint, asOf time.Time) (AgingReport, error)

	// RiskScores ranks customers with open balances by a 0-100 score
	// built from lateness and outstanding share, worst first.
	RiskScores(ctx context.Context, businessID uint, shopID *uint, asOf time.Time) ([]RiskRow, error)
}

type service struct{ db *gorm.DB }

func NewService(db *gorm.DB) Service { return &service{db: db} }

// ===== Implementations =====

func (s *service) Collections(ctx context.Context, f CollectionsFilter) (CollectionsReport, error) {
	rep := CollectionsReport{From: f.From, To: f.To}

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).
			Table("payments").
			Where("payments.business_id = ?", f.BusinessID).
			Where("payments.created_at >= ? AND payments.created_at < ?", f.From, f.To)
		if f.ShopID != nil {
			q = q.Joins("INNER JOIN purchases pp ON pp.id = payments.purchase_id").
				Where("pp.shop_id = ?", *f.ShopID)
		}
		return q
	}

	if err := base().
		Select(`payments.method AS method, COUNT(payments.id) AS count, COALESCE(SUM(payments.amount),0) AS total`).
		Where("payments.is_confirmed = true").
		Group("payments.method").
		Order("payments.method ASC").
		Scan(&rep.Collected).Error; err != nil {
		return rep, err
	}
	for _, row := range rep.Collected {
		rep.CollectedTotal += row.Total
	}

	var agg struct {
		Count int64
		Total int64
	}
	if err := base().
		Select(`COUNT(payments.id) AS count, COALESCE(SUM(payments.amount),0) AS total`).
		Where("payments.is_confirmed = false AND payments.rejected_at IS NULL").
		Scan(&agg).Error; err != nil {
		return rep, err
	}
	rep.PendingCount, rep.PendingTotal = agg.Count, agg.Total

	if err := base().
		Select(`COUNT(payments.id) AS count, COALESCE(SUM(payments.amount),0) AS total`).
		Where("payments.rejected_at IS NOT NULL").
		Scan(&agg).Error; err != nil {
		return rep, err
	}
	rep.RejectedCount, rep.RejectedTotal = agg.Count, agg.Total

	purchases := s.db.WithContext(ctx).
		Table("purchases").
		Where("business_id = ?", f.BusinessID).
		Where("created_at >= ? AND created_at < ?", f.From, f.To)
	if f.ShopID != nil {
		purchases = purchases.Where("shop_id = ?", *f.ShopID)
	}
	if err := purchases.
		Select(`COUNT(id) AS count, COALESCE(SUM(total_amount),0) AS total`).
		Scan(&agg).Error; err != nil {
		return rep, err
	}
	rep.NewPurchaseCount, rep.NewPurchaseValue = agg.Count, agg.Total

	deposits := s.db.WithContext(ctx).
		Table("wallet_transactions").
		Where("business_id = ? AND type = ?", f.BusinessID, models.WalletTxDeposit).
		Where("created_at >= ? AND created_at < ?", f.From, f.To)
	if f.ShopID != nil {
		deposits = deposits.Joins("INNER JOIN customers cc ON cc.id = wallet_transactions.customer_id").
			Where("cc.shop_id = ?", *f.ShopID)
	}
	var depositTotal int64
	if err := deposits.
		Select(`COALESCE(SUM(wallet_transactions.amount),0)`).
		Scan(&depositTotal).Error; err != nil {
		return rep, err
	}
	rep.WalletDeposits = depositTotal

	return rep, nil
}

// agingBuckets in display order. CURRENT holds balances still inside
// due date plus grace.
var agingBuckets = []string{"CURRENT", "1-30", "31-60", "61-90", "90+"}

func bucketFor(daysOverdue int) string {
	switch {
	case daysOverdue <= 0:
		return "CURRENT"
	case daysOverdue <= 30:
		return "1-30"
	case daysOverdue <= 60:
		return "31-60"
	case daysOverdue <= 90:
		return "61-90"
	default:
		return "90+"
	}
}

func daysPastGrace(p *models.Purchase, asOf time.Time) int {
	deadline := p.DueDate.AddDate(0, 0, p.GraceDays)
	if !asOf.After(deadline) {
		return 0
	}
	return int(asOf.Sub(deadline).Hours() / 24)
}

func lateFeeEstimate(pol *models.FinancingPolicy, outstanding int64) int64 {
	if pol == nil {
		return 0
	}
	pct := pol.LateFeeRate.
		Mul(decimal.NewFromInt(outstanding)).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()
	return pol.LateFeeFixed + pct
}

func (s *service) openPurchases(ctx context.Context, businessID uint, shopID *uint) ([]models.Purchase, error) {
	q := s.db.WithContext(ctx).
		Preload("Customer").
		Where("business_id = ? AND status <> ? AND outstanding_balance > 0",
			businessID, models.PurchaseCompleted)
	if shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	var rows []models.Purchase
	if err := q.Order("due_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *service) Aging(ctx context.Context, businessID uint, shopID *uint, asOf time.Time) (AgingReport, error) {
	rep := AgingReport{AsOf: asOf}

	open, err := s.openPurchases(ctx, businessID, shopID)
	if err != nil {
		return rep, err
	}

	// the late-fee terms come from today's effective policy per shop,
	// not the snapshot on the purchase
	policies := map[uint]*models.FinancingPolicy{}
	policyFor := func(shop uint) (*models.FinancingPolicy, error) {
		if pol, ok := policies[shop]; ok {
			return pol, nil
		}
		pol, err := ledger.ResolvePolicy(s.db.WithContext(ctx), businessID, shop)
		if err != nil {
			return nil, err
		}
		policies[shop] = pol
		return pol, nil
	}

	sums := map[string]*AgingBucket{}
	for _, name := range agingBuckets {
		sums[name] = &AgingBucket{Bucket: name}
	}

	for i := range open {
		p := &open[i]
		days := daysPastGrace(p, asOf)
		bucket := bucketFor(days)

		var fee int64
		if days > 0 {
			pol, err := policyFor(p.ShopID)
			if err != nil {
				return rep, err
			}
			fee = lateFeeEstimate(pol, p.OutstandingBalance)
		}

		rep.Rows = append(rep.Rows, AgingRow{
			PurchaseID:   p.ID,
			Number:       p.Number,
			ShopID:       p.ShopID,
			CustomerID:   p.CustomerID,
			CustomerName: p.Customer.FullName,
			DueDate:      p.DueDate,
			GraceDays:    p.GraceDays,
			DaysOverdue:  days,
			Outstanding:  p.OutstandingBalance,
			Bucket:       bucket,
			LateFee:      fee,
		})
		b := sums[bucket]
		b.Count++
		b.Outstanding += p.OutstandingBalance
		b.LateFees += fee
	}

	for _, name := range agingBuckets {
		rep.Buckets = append(rep.Buckets, *sums[name])
	}
	return rep, nil
}

// Score weights: lateness carries 70 points (capped at 90 days),
// outstanding share of the financed value the remaining 30.
func riskScore(maxDaysLate int, outstanding, total int64) int {
	days := maxDaysLate
	if days > 90 {
		days = 90
	}
	score := float64(days) / 90 * 70
	if total > 0 {
		score += float64(outstanding) / float64(total) * 30
	}
	return int(score + 0.5)
}

func riskBand(score int) string {
	switch {
	case score < 25:
		return "LOW"
	case score < 50:
		return "MEDIUM"
	case score < 75:
		return "HIGH"
	default:
		return "SEVERE"
	}
}

func (s *service) RiskScores(ctx context.Context, businessID uint, shopID *uint, asOf time.Time) ([]RiskRow, error) {
	open, err := s.openPurchases(ctx, businessID, shopID)
	if err != nil {
		return nil, err
	}

	perCustomer := map[uint]*RiskRow{}
	var order []uint
	for i := range open {
		p := &open[i]
		row, ok := perCustomer[p.CustomerID]
		if !ok {
			row = &RiskRow{
				CustomerID:   p.CustomerID,
				CustomerName: p.Customer.FullName,
				Phone:        p.Customer.Phone,
			}
			perCustomer[p.CustomerID] = row
			order = append(order, p.CustomerID)
		}
		row.OpenPurchases++
		row.Outstanding += p.OutstandingBalance
		row.TotalValue += p.TotalAmount
		if days := daysPastGrace(p, asOf); days > row.MaxDaysLate {
			row.MaxDaysLate = days
		}
	}

	out := make([]RiskRow, 0, len(order))
	for _, id := range order {
		row := perCustomer[id]
		row.Score = riskScore(row.MaxDaysLate, row.Outstanding, row.TotalValue)
		row.Band = riskBand(row.Score)
		out = append(out, *row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}
