package http

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
	"ledger/internal/services"
)

type tagDTO struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Type     core.TxType `json:"type,omitempty"`
	Icon     string      `json:"icon"`
	Color    string      `json:"color"`
	IsCustom bool        `json:"is_custom"`
}

func newTagDTO(t core.Tag) tagDTO {
	return tagDTO{ID: t.ID, Name: t.Name, Type: t.Type, Icon: t.Icon, Color: t.Color, IsCustom: t.IsCustom}
}

func newTagDTOs(tags []core.Tag) []tagDTO {
	out := make([]tagDTO, 0, len(tags))
	for _, t := range tags {
		out = append(out, newTagDTO(t))
	}
	return out
}

// transactionDTO always carries a displayable tag; TagMissing tells the
// client it is the "Other" placeholder.
type transactionDTO struct {
	ID         int64       `json:"id"`
	Amount     string      `json:"amount"`
	Currency   string      `json:"currency"`
	Date       time.Time   `json:"date"`
	Type       core.TxType `json:"type"`
	Note       string      `json:"note,omitempty"`
	TagID      *int64      `json:"tag_id"`
	Tag        tagDTO      `json:"tag"`
	TagMissing bool        `json:"tag_missing"`
}

func newTransactionDTO(v core.TransactionView) transactionDTO {
	return transactionDTO{
		ID:         v.ID,
		Amount:     v.Amount.StringFixed(core.AmountScale),
		Currency:   v.Currency,
		Date:       v.Date.UTC(),
		Type:       v.Type,
		Note:       v.Note,
		TagID:      v.TagID,
		Tag:        newTagDTO(v.Tag.Display()),
		TagMissing: v.Tag.IsMissing(),
	}
}

func newTransactionDTOs(txs []core.TransactionView) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionDTO(tx))
	}
	return out
}

type recurringDTO struct {
	ID             int64     `json:"id"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	DayOfMonth     int       `json:"day_of_month"`
	TagID          *int64    `json:"tag_id"`
	Tag            tagDTO    `json:"tag"`
	TagMissing     bool      `json:"tag_missing"`
	Note           string    `json:"note,omitempty"`
	NextOccurrence core.Date `json:"next_occurrence"`
}

func newRecurringDTOs(items []core.RecurringExpenseView, today core.Date) []recurringDTO {
	out := make([]recurringDTO, 0, len(items))
	for _, re := range items {
		out = append(out, recurringDTO{
			ID:             re.ID,
			Amount:         re.Amount.StringFixed(core.AmountScale),
			Currency:       re.Currency,
			DayOfMonth:     re.DayOfMonth,
			TagID:          re.TagID,
			Tag:            newTagDTO(re.Tag.Display()),
			TagMissing:     re.Tag.IsMissing(),
			Note:           re.Note,
			NextOccurrence: core.NextOccurrence(re.RecurringExpense, today),
		})
	}
	return out
}

type windowDTO struct {
	Mode    core.WindowMode `json:"mode"`
	Start   core.Date       `json:"start"`
	End     core.Date       `json:"end"`
	Sliding struct {
		Start core.Date `json:"start"`
		End   core.Date `json:"end"`
	} `json:"sliding"`
	Monthly struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	} `json:"monthly"`
}

func newWindowDTO(w core.Window) windowDTO {
	var dto windowDTO
	dto.Mode = w.Mode
	dto.Start, dto.End = w.Resolve()
	dto.Sliding.Start = w.Sliding.Start
	dto.Sliding.End = w.Sliding.End
	dto.Monthly.Year = w.Monthly.Year
	dto.Monthly.Month = int(w.Monthly.Month)
	return dto
}

type snapshotDTO struct {
	Start        core.Date        `json:"start"`
	End          core.Date        `json:"end"`
	Tags         []tagDTO         `json:"tags"`
	Transactions []transactionDTO `json:"transactions"`
}

func newSnapshotDTO(s services.Snapshot) snapshotDTO {
	return snapshotDTO{
		Start:        s.Start,
		End:          s.End,
		Tags:         newTagDTOs(s.Tags),
		Transactions: newTransactionDTOs(s.Transactions),
	}
}

type (
	createTagRequest struct {
		Name  string `json:"name"`
		Type  string `json:"type"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}

	// createTransactionRequest takes the amount as a JSON number or
	// numeric string. An empty currency means the default currency and an
	// empty date means now.
	createTransactionRequest struct {
		Amount   json.Number `json:"amount"`
		Currency string      `json:"currency"`
		Date     string      `json:"date"`
		TagID    *int64      `json:"tag_id"`
		Type     string      `json:"type"`
		Note     string      `json:"note"`
	}

	createRecurringRequest struct {
		Amount     json.Number `json:"amount"`
		Currency   string      `json:"currency"`
		DayOfMonth int         `json:"day_of_month"`
		TagID      *int64      `json:"tag_id"`
		Note       string      `json:"note"`
	}

	putSettingRequest struct {
		Value string `json:"value"`
	}

	createdResponse struct {
		ID int64 `json:"id"`
	}

	settingResponse struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
)
