package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	rePhone = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSort  = regexp.MustCompile(`^(price-low|price-high|rating|newest|popular|relevance)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password enforces the account policy: at least 8 characters with a
// lowercase letter, an uppercase letter and a digit.
func Password(s string) []string {
	var errs []string
	if s == "" {
		return []string{"Password is required"}
	}
	if len(s) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	if !hasLower {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !hasUpper {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !hasDigit {
		errs = append(errs, "Password must contain at least one number")
	}
	return errs
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 20 {
		return "", false
	}
	return s, rePhone.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID validates a resource identifier (product/category/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Qty parses a cart quantity. Values below 1 are invalid: the quantity floor
// is enforced here, before any network call is made.
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	if n > 99 {
		n = 99
	}
	return n, true
}

// Price parses a non-negative filter bound. Empty means "unset".
func Price(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// Rating parses a minimum-rating filter (1..5). Empty means "unset".
func Rating(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}

// Sort validates a product sort key.
func Sort(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, reSort.MatchString(s)
}

// Name validates a displayable person name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Required reports whether a form value is present after trimming.
func Required(s string) bool {
	return strings.TrimSpace(s) != ""
}
