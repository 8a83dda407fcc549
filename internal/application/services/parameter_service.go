package services

import (
	"errors"
	"net/http"
	"strconv"
	"time"
)

var ErrInvalidResultIndex = errors.New("result index must be a positive integer")

type ParameterService struct{}

func NewParameterService() *ParameterService {
	return &ParameterService{}
}

type TryOnOptions struct {
	// Wait blocks the request until the try-on settles.
	Wait bool
	// WaitTimeout bounds how long a waiting request blocks. Zero means no bound.
	WaitTimeout time.Duration
}

func (s *ParameterService) ParseTryOnOptions(r *http.Request) *TryOnOptions {
	return &TryOnOptions{
		Wait:        s.getBool(r, "wait", false),
		WaitTimeout: time.Duration(s.getInt(r, "timeout", 0, 1, 600)) * time.Second,
	}
}

// ParseResultIndex converts the one-based index used in URLs and file names
// into a zero-based result index.
func (s *ParameterService) ParseResultIndex(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, ErrInvalidResultIndex
	}
	return n - 1, nil
}

func (s *ParameterService) getBool(r *http.Request, key string, defaultValue bool) bool {
	value := r.FormValue(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

func (s *ParameterService) getInt(r *http.Request, key string, defaultValue, min, max int) int {
	value := r.FormValue(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if max > 0 && (intVal < min || intVal > max) {
		return defaultValue
	}

	if min > 0 && intVal < min {
		return defaultValue
	}

	return intVal
}
