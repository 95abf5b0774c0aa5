package fine_test

import (
	"testing"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/fine"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeLateFee(t *testing.T) {
	t.Parallel()
	capped := decimal.RequireFromString("10")
	tests := []struct {
		name       string
		due        time.Time
		returnedAt time.Time
		policy     fine.Policy
		want       string
	}{
		{
			name:       "three days late no grace",
			due:        date("2024-01-01"),
			returnedAt: date("2024-01-04"),
			policy:     fine.Policy{DailyRate: decimal.NewFromInt(5)},
			want:       "15.00",
		},
		{
			name:       "one day beyond two grace days",
			due:        date("2024-01-01"),
			returnedAt: date("2024-01-04"),
			policy:     fine.Policy{DailyRate: decimal.NewFromInt(5), GraceDays: 2},
			want:       "5.00",
		},
		{
			name:       "returned on due date",
			due:        date("2024-01-01"),
			returnedAt: date("2024-01-01"),
			policy:     fine.Policy{DailyRate: decimal.NewFromInt(5)},
			want:       "0.00",
		},
		{
			name:       "returned early",
			due:        date("2024-01-10"),
			returnedAt: date("2024-01-01"),
			policy:     fine.Policy{DailyRate: decimal.NewFromInt(5)},
			want:       "0.00",
		},
		{
			name:       "within grace",
			due:        date("2024-01-01"),
			returnedAt: date("2024-01-03"),
			policy:     fine.Policy{DailyRate: decimal.NewFromInt(5), GraceDays: 2},
			want:       "0.00",
		},
		{
			name:       "partial day counts in full",
			due:        date("2024-01-01"),
			returnedAt: date("2024-01-01").Add(90 * time.Minute),
			policy:     fine.Policy{DailyRate: decimal.RequireFromString("0.25")},
			want:       "0.25",
		},
		{
			name:       "clamped to cap",
			due:        date("2024-01-01"),
			returnedAt: date("2024-02-01"),
			policy:     fine.Policy{DailyRate: decimal.NewFromInt(2), Cap: &capped},
			want:       "10.00",
		},
		{
			name:       "rounded to cents",
			due:        date("2024-01-01"),
			returnedAt: date("2024-01-04"),
			policy:     fine.Policy{DailyRate: decimal.RequireFromString("0.3333")},
			want:       "1.00",
		},
		{
			name:       "negative rate never yields negative fee",
			due:        date("2024-01-01"),
			returnedAt: date("2024-01-04"),
			policy:     fine.Policy{DailyRate: decimal.NewFromInt(-5)},
			want:       "0.00",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := fine.ComputeLateFee(tt.due, tt.returnedAt, tt.policy)
			require.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestDaysLate(t *testing.T) {
	t.Parallel()
	due := date("2024-01-01")
	require.Equal(t, 0, fine.DaysLate(due, due))
	require.Equal(t, 0, fine.DaysLate(due, due.Add(-time.Hour)))
	require.Equal(t, 1, fine.DaysLate(due, due.Add(time.Second)))
	require.Equal(t, 3, fine.DaysLate(due, date("2024-01-04")))
}
