package common

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/text/language"
)

func TestPluralizePoints(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "نقطة"},
		{1, "نقطة"},
		{2, "نقطتان"},
		{3, "نقاط"},
		{10, "نقاط"},
		{11, "نقطة"},
		{50, "نقطة"},
		{100, "نقطة"},
		{103, "نقاط"},
		{-5, "نقاط"},
	}
	for _, tt := range tests {
		if got := PluralizePoints(tt.n); got != tt.want {
			t.Errorf("PluralizePoints(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatPoints(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "نقطة واحدة"},
		{2, "نقطتان"},
		{5, "5 نقاط"},
		{50, "50 نقطة"},
	}
	for _, tt := range tests {
		if got := FormatPoints(tt.n); got != tt.want {
			t.Errorf("FormatPoints(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatPointsAmount(t *testing.T) {
	if got := FormatPointsAmount(30); got != "+30 نقطة" {
		t.Errorf("FormatPointsAmount(30) = %q", got)
	}
	if got := FormatPointsAmount(-5); got != "-5 نقاط" {
		t.Errorf("FormatPointsAmount(-5) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(language.English, 1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q, want 1,234,567", got)
	}
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("credit: %w", Storage("insert event", cause))

	if !errors.Is(err, ErrStorage) {
		t.Error("errors.Is(err, ErrStorage) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not reachable through Unwrap")
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "insert event" {
		t.Errorf("errors.As failed or wrong op: %+v", se)
	}
	if Storage("noop", nil) != nil {
		t.Error("Storage(op, nil) must be nil")
	}
}
