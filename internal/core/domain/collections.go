package domain

import (
	"encoding/json"
	"time"
)

// Collection specs for the five canonical collections. The column
// order here is the row order produced by the Row methods below.
var (
	PaymentsCollection = CollectionSpec{
		Name:       "stripe_payments",
		KeyColumns: []string{"session_id"},
		Columns: []string{
			"session_id", "created_utc", "amount_total", "currency",
			"status", "email_hash", "country", "raw",
		},
	}

	AdEarningsCollection = CollectionSpec{
		Name:       "adsense_earnings",
		KeyColumns: []string{"date", "account", "ad_unit", "country"},
		Columns: []string{
			"date", "account", "ad_unit", "country",
			"page_views", "impressions", "clicks", "earnings", "rpm", "raw",
		},
	}

	AdPerformanceCollection = CollectionSpec{
		Name:       "carbon_ads",
		KeyColumns: []string{"date", "advertiser", "ad_id"},
		Columns: []string{
			"date", "advertiser", "ad_id",
			"impressions", "clicks", "spend", "cpc", "cpm", "raw",
		},
	}

	SubscribersCollection = CollectionSpec{
		Name:       "email_subscribers",
		KeyColumns: []string{"subscriber_id"},
		Columns: []string{
			"subscriber_id", "email_hash", "subscribed_utc",
			"status", "country", "tags", "raw",
		},
	}

	AppSalesCollection = CollectionSpec{
		Name:       "app_sales",
		KeyColumns: []string{"date", "app_id", "country", "currency"},
		Columns: []string{
			"date", "app_id", "country", "currency",
			"units", "proceeds", "refunds", "raw",
		},
	}
)

// Row flattens the payment into PaymentsCollection column order.
func (p Payment) Row() Row {
	return Row{
		p.SessionID,
		p.Created.UTC().Format(time.RFC3339),
		p.AmountTotal,
		p.Currency,
		p.Status,
		deref(p.EmailHash),
		deref(p.Country),
		string(p.Raw),
	}
}

// Row flattens the earning into AdEarningsCollection column order.
// A nil country keys as the empty string so per-country rows and the
// unattributed remainder never collide.
func (e AdEarning) Row() Row {
	country := any("")
	if e.Country != nil {
		country = *e.Country
	}
	return Row{
		e.Date,
		e.Account,
		e.AdUnit,
		country,
		e.PageViews,
		e.Impressions,
		e.Clicks,
		e.Earnings,
		derefF(e.RPM),
		string(e.Raw),
	}
}

// Row flattens the performance row into AdPerformanceCollection column order.
func (p AdPerformance) Row() Row {
	return Row{
		p.Date,
		p.Advertiser,
		p.AdID,
		p.Impressions,
		p.Clicks,
		p.Spend,
		derefF(p.CPC),
		derefF(p.CPM),
		string(p.Raw),
	}
}

// Row flattens the subscriber into SubscribersCollection column order.
// Tags are serialised to JSON text so flat backends can store them.
func (s Subscriber) Row() Row {
	tags := "[]"
	if len(s.Tags) > 0 {
		if b, err := json.Marshal(s.Tags); err == nil {
			tags = string(b)
		}
	}
	return Row{
		s.SubscriberID,
		s.EmailHash,
		s.Subscribed.UTC().Format(time.RFC3339),
		s.Status,
		deref(s.Country),
		tags,
		string(s.Raw),
	}
}

// Row flattens the sale into AppSalesCollection column order.
func (s AppSale) Row() Row {
	return Row{
		s.Date,
		s.AppID,
		s.Country,
		s.Currency,
		s.Units,
		s.Proceeds,
		s.Refunds,
		string(s.Raw),
	}
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefF(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
