package registration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		prior    *Record
		expected Status
	}{
		{
			name:     "No prior record is a creation",
			prior:    nil,
			expected: Created,
		},
		{
			name:     "One hour ago is ineligible",
			prior:    &Record{CSN: "ABC123", RegisteredAt: now.Add(-time.Hour)},
			expected: Ineligible,
		},
		{
			name:     "Just under the window is ineligible",
			prior:    &Record{CSN: "ABC123", RegisteredAt: now.Add(-EligibilityWindow + time.Millisecond)},
			expected: Ineligible,
		},
		{
			name:     "Exactly 24 hours ago is eligible",
			prior:    &Record{CSN: "ABC123", RegisteredAt: now.Add(-24 * time.Hour)},
			expected: Eligible,
		},
		{
			name:     "Several days ago is eligible",
			prior:    &Record{CSN: "ABC123", RegisteredAt: now.Add(-72 * time.Hour)},
			expected: Eligible,
		},
		{
			name:     "Timestamp in the future is ineligible",
			prior:    &Record{CSN: "ABC123", RegisteredAt: now.Add(time.Hour)},
			expected: Ineligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Decide(tt.prior, now))
		})
	}
}

func TestElapsedHours_Truncates(t *testing.T) {
	req := require.New(t)
	req.Equal(int64(23), ElapsedHours(23*time.Hour+59*time.Minute))
	req.Equal(int64(24), ElapsedHours(24*time.Hour))
	req.Equal(int64(0), ElapsedHours(59*time.Minute))
	req.Equal(int64(25), ElapsedHours(25*time.Hour+30*time.Second))
	req.Equal(int64(-1), ElapsedHours(-30*time.Minute))
}

func TestNewResponse_ReportsPriorState(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	prior := &Record{CSN: "ABC123", RegisteredAt: now.Add(-time.Hour), Count: 5}

	resp := NewResponse(Record{CSN: "ABC123", RegisteredAt: now, Count: 10}, prior)

	req.Equal(Ineligible, resp.Status)
	req.NotNil(resp.ElapsedHours)
	req.Equal(int64(1), *resp.ElapsedHours)
	req.Equal(prior.RegisteredAt, resp.RegisteredAt)
	req.Equal(int64(5), resp.Count)
}

func TestNewResponse_Created(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	resp := NewResponse(Record{CSN: "ABC123", RegisteredAt: now, Count: 5}, nil)

	req.Equal(Created, resp.Status)
	req.Nil(resp.ElapsedHours)
	req.Equal(now, resp.RegisteredAt)
	req.Equal(int64(5), resp.Count)
}

func TestRegisterCommand_Validate(t *testing.T) {
	req := require.New(t)
	req.NoError(RegisterCommand{CSN: "ABC123", Count: 5}.Validate())
	req.NoError(RegisterCommand{CSN: "abc123", Count: -3}.Validate())
	req.Error(RegisterCommand{CSN: "", Count: 5}.Validate())
	req.Error(RegisterCommand{CSN: "   ", Count: 5}.Validate())
}
