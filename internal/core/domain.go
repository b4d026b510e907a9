package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// DefaultCategoryName is the fallback bucket used when no category can be
// inferred from a message. It is created lazily per account.
const DefaultCategoryName = "Other"

// MaxDescriptionLen caps a transaction description in bytes.
const MaxDescriptionLen = 200

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Month identifies a calendar month for budget aggregation.
	Month struct {
		Year  int
		Month int // 1-12
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID    int64
		Phone string
	}

	Category struct {
		ID        int64
		AccountID int64
		Name      string
	}

	Transaction struct {
		ID          int64
		AccountID   int64
		CategoryID  int64
		Type        TransactionType
		Amount      Money
		Description string // may be empty
		Date        Date
	}

	// InboundMessage is one webhook delivery. The ID is generated per
	// message and used only for log correlation.
	InboundMessage struct {
		ID         string
		FromPhone  string
		Body       string
		ReceivedAt time.Time
	}

	// BudgetStatus reports allocation vs spend for one category, or for
	// the whole account when summed across categories.
	BudgetStatus struct {
		Month     Month
		Allocated Money
		Spent     Money
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyPhone         = errors.New("empty phone number")
)

func (t TransactionType) IsValid() bool {
	return t == Expense || t == Income
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: int(t.Month())}
}

// CurrentMonth returns the calendar month containing the current time in UTC.
func CurrentMonth() Month {
	return MonthOf(time.Now().UTC())
}

func (m Month) Validate() error {
	if m.Year < 1 || m.Month < 1 || m.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// String renders the month as "YYYY-MM", the key format used by budget rows.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Name returns the short English month name, e.g. "Aug".
func (m Month) Name() string {
	if m.Month < 1 || m.Month > 12 {
		return "?"
	}
	return time.Month(m.Month).String()[:3]
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Remaining returns allocated minus spent. It may be negative when the
// account is over budget.
func (b BudgetStatus) Remaining() Money {
	return Money{Cents: b.Allocated.Cents - b.Spent.Cents}
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Phone) == "" {
		return ErrEmptyPhone
	}
	return nil
}

func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if !tx.Type.IsValid() {
		return ErrInvalidType
	}
	if len(tx.Description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return tx.Amount.Validate()
}
