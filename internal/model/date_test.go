package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid date", input: "2024-01-31", want: "2024-01-31"},
		{name: "leap day", input: "2024-02-29", want: "2024-02-29"},
		{name: "empty string", input: "", wantErr: true},
		{name: "missing zero padding", input: "2024-1-5", wantErr: true},
		{name: "with time component", input: "2024-01-31T00:00:00Z", wantErr: true},
		{name: "nonsense", input: "not-a-date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateComparisons(t *testing.T) {
	earlier := NewDate(2024, time.January, 15)
	later := NewDate(2024, time.February, 1)

	if !earlier.Before(later) {
		t.Error("expected earlier.Before(later)")
	}
	if !later.After(earlier) {
		t.Error("expected later.After(earlier)")
	}
	if earlier.After(earlier) || earlier.Before(earlier) {
		t.Error("a date must not be before or after itself")
	}
	if !earlier.Equal(NewDate(2024, time.January, 15)) {
		t.Error("expected identical dates to be equal")
	}
}

func TestDateOfTruncatesTime(t *testing.T) {
	ts := time.Date(2024, time.June, 3, 23, 45, 12, 0, time.UTC)
	if got := DateOf(ts).String(); got != "2024-06-03" {
		t.Errorf("DateOf = %s, want 2024-06-03", got)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.March, 9)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-03-09"` {
		t.Errorf("marshal = %s, want %q", data, "2024-03-09")
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestDateJSONNull(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte("null"), &d); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("expected zero date, got %s", d)
	}
}
