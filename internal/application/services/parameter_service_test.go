package services

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParameterService_ParseTryOnOptions(t *testing.T) {
	s := NewParameterService()

	tests := []struct {
		url  string
		want bool
	}{
		{"/tryon", false},
		{"/tryon?wait=true", true},
		{"/tryon?wait=1", true},
		{"/tryon?wait=no", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r := httptest.NewRequest("POST", tt.url, nil)
			if got := s.ParseTryOnOptions(r).Wait; got != tt.want {
				t.Errorf("Wait = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParameterService_ParseResultIndex(t *testing.T) {
	s := NewParameterService()

	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{"2", 1, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"first", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := s.ParseResultIndex(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResultIndex(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseResultIndex(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestParameterService_ParseWaitTimeout(t *testing.T) {
	s := NewParameterService()

	tests := []struct {
		url  string
		want time.Duration
	}{
		{"/tryon?wait=true", 0},
		{"/tryon?wait=true&timeout=30", 30 * time.Second},
		{"/tryon?wait=true&timeout=0", 0},
		{"/tryon?wait=true&timeout=9999", 0},
		{"/tryon?wait=true&timeout=soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r := httptest.NewRequest("POST", tt.url, nil)
			if got := s.ParseTryOnOptions(r).WaitTimeout; got != tt.want {
				t.Errorf("WaitTimeout = %v, want %v", got, tt.want)
			}
		})
	}
}
