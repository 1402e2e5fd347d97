package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Number is a float64 that also accepts numeric strings in JSON, including
// Brazilian formatted amounts such as "R$ 1.250.000,50".
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	f, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// ParseAmount parses "450000", "450000.50", "450.000,50" or "R$ 450.000".
// An empty string is zero.
func ParseAmount(s string) (float64, error) {
	// pt-BR currency formatting puts a non-breaking space after "R$".
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(s, "R$")
	if s == "" {
		return 0, nil
	}
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	case strings.Contains(s, "."):
		// A single dot followed by exactly three digits is a thousands mark.
		if i := strings.IndexByte(s, '.'); len(s)-i-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return f, nil
}

func numberPtr(n *Number) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}
