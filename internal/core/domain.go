package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Monthly Period = "monthly"
	Yearly  Period = "yearly"

	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"

	SchemeBlue   ColorScheme = "blue"
	SchemeGreen  ColorScheme = "green"
	SchemePurple ColorScheme = "purple"
	SchemeTeal   ColorScheme = "teal"
	SchemeOrange ColorScheme = "orange"
)

const dateLayout = "2006-01-02"

const maxDescriptionLength = 200

type (
	TransactionType string
	Period          string
	Priority        string
	ThemeMode       string
	ColorScheme     string

	// Date is a calendar date held at midnight UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"` // category name, not id
		Date        Date            `json:"date"`
		Type        TransactionType `json:"type"`
	}

	Category struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Color       string `json:"color"`
		Icon        string `json:"icon,omitempty"`
		BudgetLimit Money  `json:"budgetLimit,omitzero"`
	}

	Budget struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Amount     Money  `json:"amount"`
		Period     Period `json:"period"`
		CategoryID string `json:"categoryId,omitempty"`
		StartDate  Date   `json:"startDate"`
		EndDate    Date   `json:"endDate,omitzero"` // zero means open ended
	}

	Goal struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		TargetAmount  Money    `json:"targetAmount"`
		CurrentAmount Money    `json:"currentAmount"`
		StartDate     Date     `json:"startDate"`
		Deadline      Date     `json:"deadline,omitzero"`
		Category      string   `json:"category,omitempty"`
		Priority      Priority `json:"priority"`
	}

	Preferences struct {
		ThemeMode   ThemeMode   `json:"themeMode"`
		ColorScheme ColorScheme `json:"colorScheme"`
	}

	User struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Email       string      `json:"email"`
		Currency    string      `json:"currency"`
		Preferences Preferences `json:"preferences"`
	}
)

// UnknownCategory is returned by lookups that find no matching category.
var UnknownCategory = Category{Color: "#94a3b8"}

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")
	ErrDescriptionLength = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidPeriod     = errors.New("invalid budget period")
	ErrInvalidPriority   = errors.New("invalid goal priority")
	ErrInvalidTheme      = errors.New("invalid theme mode")
	ErrInvalidScheme     = errors.New("invalid color scheme")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
)

// IsValidationError reports whether err is one of the validation sentinels.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidDay, ErrInvalidMonth, ErrInvalidAmount, ErrEmptyDescription,
		ErrDescriptionLength, ErrEmptyCategory, ErrEmptyName, ErrInvalidType,
		ErrInvalidPeriod, ErrInvalidPriority, ErrInvalidTheme, ErrInvalidScheme,
		ErrInvalidDateRange, errZeroDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var errZeroDate = errors.New("date cannot be zero")

func (d Date) Validate() error {
	if d.IsZero() {
		return errZeroDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t.UTC()), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyDescription
	}
	if len(s) > maxDescriptionLength {
		return ErrDescriptionLength
	}
	return nil
}

func (t TransactionType) Valid() bool { return t == Income || t == Expense }

func (p Period) Valid() bool { return p == Monthly || p == Yearly }

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

func (c ColorScheme) Valid() bool {
	switch c {
	case SchemeBlue, SchemeGreen, SchemePurple, SchemeTeal, SchemeOrange:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.BudgetLimit.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if err := b.StartDate.Validate(); err != nil {
		return err
	}
	if !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := g.StartDate.Validate(); err != nil {
		return err
	}
	if !g.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

func (p Preferences) Validate() error {
	if !p.ThemeMode.Valid() {
		return ErrInvalidTheme
	}
	if !p.ColorScheme.Valid() {
		return ErrInvalidScheme
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return u.Preferences.Validate()
}
