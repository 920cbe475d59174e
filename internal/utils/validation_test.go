package utils

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateMealName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid name", input: "Grilled chicken", wantErr: false},
		{name: "single character", input: "X", wantErr: false},
		{name: "empty string", input: "", wantErr: true},
		{name: "only spaces", input: "   ", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxMealNameLength+1), wantErr: true},
		{name: "multibyte at limit", input: strings.Repeat("é", MaxMealNameLength), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMealName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMealName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMealDescription(t *testing.T) {
	if err := ValidateMealDescription(""); err != nil {
		t.Errorf("empty description should be valid, got %v", err)
	}
	if err := ValidateMealDescription(strings.Repeat("a", MaxMealDescriptionLength+1)); err == nil {
		t.Error("expected error for oversized description")
	}
}

func TestParseMealDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	offset := time.FixedZone("BRT", -3*60*60)

	tests := []struct {
		name    string
		input   string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{name: "empty means now", input: "", loc: time.UTC, want: now},
		{name: "rfc3339", input: "2024-01-01T12:00:00Z", loc: time.UTC, want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", input: "2024-01-01T23:30:00-03:00", loc: time.UTC, want: time.Date(2024, 1, 2, 2, 30, 0, 0, time.UTC)},
		{name: "naive timestamp in location", input: "2024-01-01T23:30:00", loc: offset, want: time.Date(2024, 1, 1, 23, 30, 0, 0, offset)},
		{name: "space separated", input: "2024-01-01 07:15:00", loc: time.UTC, want: time.Date(2024, 1, 1, 7, 15, 0, 0, time.UTC)},
		{name: "date only", input: "2024-01-05", loc: time.UTC, want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "yesterday", loc: time.UTC, wantErr: true},
		{name: "impossible date", input: "2024-02-30", loc: time.UTC, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMealDate(tt.input, tt.loc, now)
			if tt.wantErr {
				var verr ValidationError
				if !errors.As(err, &verr) || verr.Field != "date" {
					t.Fatalf("expected date ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseMealDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
