package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxNoteLength bounds notes in characters, not bytes.
const MaxNoteLength = 200

const (
	Expense TxType = "expense"
	Income  TxType = "income"
)

// SettingDefaultCurrency is the settings key read by the entry-creation flow.
const SettingDefaultCurrency = "defaultCurrency"

type (
	TxType string

	// Date is a calendar date at UTC midnight.
	Date struct {
		time.Time
	}

	Tag struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Type     TxType `json:"type"`
		Icon     string `json:"icon"`
		Color    string `json:"color"`
		IsCustom bool   `json:"is_custom"`
	}

	Transaction struct {
		ID       int64           `json:"id"`
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
		Date     time.Time       `json:"date"`
		TagID    *int64          `json:"tag_id,omitempty"`
		Type     TxType          `json:"type"`
		Note     string          `json:"note,omitempty"`
	}

	// TransactionView is a transaction joined with whatever its tag reference
	// resolves to at read time.
	TransactionView struct {
		Transaction
		Tag TagRef `json:"-"`
	}

	RecurringExpense struct {
		ID         int64           `json:"id"`
		Amount     decimal.Decimal `json:"amount"`
		Currency   string          `json:"currency"`
		DayOfMonth int             `json:"day_of_month"`
		TagID      *int64          `json:"tag_id,omitempty"`
		Note       string          `json:"note,omitempty"`
	}

	RecurringExpenseView struct {
		RecurringExpense
		Tag TagRef `json:"-"`
	}

	Setting struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	// TransactionFilter selects transactions whose calendar date lies in
	// [Start, End]. An empty TagIDs or Type matches everything.
	TransactionFilter struct {
		Start  Date
		End    Date
		TagIDs []int64
		Type   TxType
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyTagName      = errors.New("empty tag name")
	ErrInvalidColor      = errors.New("invalid color")
	ErrUnknownTag        = errors.New("unknown tag")
	ErrTagTypeMismatch   = errors.New("tag type does not match transaction type")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	ErrNoteTooLong       = errors.New("note too long (max 200 characters)")
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ParseTxType accepts "expense" or "income" in any case.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TxType) Valid() bool {
	return t == Expense || t == Income
}

func (t TxType) String() string {
	return string(t)
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf is the calendar date of t as read in t's own location. Stored
// timestamps are wall clocks, so this is the day the entry was made on.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// MarshalJSON encodes d as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// DaysIn returns the length of the given month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (t Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyTagName}
	}
	if !t.Type.Valid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	if !hexColor.MatchString(t.Color) {
		return &ValidationError{Field: "color", Err: ErrInvalidColor}
	}
	return nil
}

func (tx Transaction) Validate() error {
	if err := ValidateAmount(tx.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if _, err := NormalizeCurrency(tx.Currency); err != nil {
		return &ValidationError{Field: "currency", Err: err}
	}
	if !tx.Type.Valid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	if tx.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	if utf8.RuneCountInString(tx.Note) > MaxNoteLength {
		return &ValidationError{Field: "note", Err: ErrNoteTooLong}
	}
	return nil
}

func (re RecurringExpense) Validate() error {
	if re.DayOfMonth < 1 || re.DayOfMonth > 31 {
		return &ValidationError{Field: "day_of_month", Err: ErrInvalidDayOfMonth}
	}
	if err := ValidateAmount(re.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if _, err := NormalizeCurrency(re.Currency); err != nil {
		return &ValidationError{Field: "currency", Err: err}
	}
	if utf8.RuneCountInString(re.Note) > MaxNoteLength {
		return &ValidationError{Field: "note", Err: ErrNoteTooLong}
	}
	return nil
}
