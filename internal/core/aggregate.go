package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type (
	// Bucket is one category's share of a Breakdown.
	Bucket struct {
		TagID      int64           `json:"tag_id"`
		TagName    string          `json:"tag_name"`
		Color      string          `json:"color"`
		Sum        decimal.Decimal `json:"sum"`
		Percentage int64           `json:"percentage"`
	}

	// Breakdown is the per-category aggregation of one type and currency.
	// Percentages are rounded per bucket and need not add up to 100.
	Breakdown struct {
		Type     TxType          `json:"type"`
		Currency string          `json:"currency"`
		Total    decimal.Decimal `json:"total"`
		Buckets  []Bucket        `json:"buckets"`
	}
)

// Aggregate groups the transactions of the given type and currency by tag.
// Transactions whose tag is missing share the OtherTagID bucket.
func Aggregate(txs []TransactionView, typ TxType, currency string) Breakdown {
	out := Breakdown{
		Type:     typ,
		Currency: currency,
		Total:    decimal.Zero,
		Buckets:  []Bucket{},
	}

	index := make(map[int64]int)
	for _, tx := range txs {
		if tx.Type != typ || tx.Currency != currency {
			continue
		}
		tag := tx.Tag.Display()
		i, ok := index[tag.ID]
		if !ok {
			i = len(out.Buckets)
			index[tag.ID] = i
			out.Buckets = append(out.Buckets, Bucket{
				TagID:   tag.ID,
				TagName: tag.Name,
				Color:   tag.Color,
				Sum:     decimal.Zero,
			})
		}
		out.Buckets[i].Sum = out.Buckets[i].Sum.Add(tx.Amount)
	}

	for _, b := range out.Buckets {
		out.Total = out.Total.Add(b.Sum)
	}
	for i := range out.Buckets {
		out.Buckets[i].Percentage = Percentage(out.Buckets[i].Sum, out.Total)
	}

	sort.SliceStable(out.Buckets, func(i, j int) bool {
		if c := out.Buckets[i].Sum.Cmp(out.Buckets[j].Sum); c != 0 {
			return c > 0
		}
		return out.Buckets[i].TagID < out.Buckets[j].TagID
	})
	return out
}

// Percentage returns round(part / total * 100), half away from zero, or 0
// when total is not positive.
func Percentage(part, total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return part.Mul(hundred).Div(total).Round(0).IntPart()
}

// SelectCurrency keeps preferred when it occurs in available, otherwise
// picks the first available code, otherwise fallback.
func SelectCurrency(preferred string, available []string, fallback string) string {
	for _, c := range available {
		if c == preferred {
			return preferred
		}
	}
	if len(available) > 0 {
		return available[0]
	}
	return fallback
}
