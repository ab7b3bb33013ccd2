package validation

import (
	"bufio"
	_ "embed"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes and newer versions reject it.
	maxPasswordBytes = 72
	maxSimilarity    = 0.7
)

//go:embed common_passwords.txt
var commonPasswordsRaw string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(commonPasswordsRaw))
	for sc.Scan() {
		if p := strings.TrimSpace(sc.Text()); p != "" {
			set[strings.ToLower(p)] = struct{}{}
		}
	}
	return set
}()

var nonWord = regexp.MustCompile(`\W+`)

// CheckPassword applies the account password policy. attrs maps a field
// label (e.g. "first name") to the user's value for the similarity check.
// It returns one message per violated rule; nil means acceptable.
func CheckPassword(password string, attrs map[string]string) []string {
	var problems []string
	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, "This password is too long.")
	}
	if label, ok := similarAttribute(password, attrs); ok {
		problems = append(problems, "The password is too similar to the "+label+".")
	}
	if _, common := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; common {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func similarAttribute(password string, attrs map[string]string) (string, bool) {
	pw := strings.ToLower(password)
	for _, label := range sortedKeys(attrs) {
		value := strings.ToLower(attrs[label])
		if value == "" {
			continue
		}
		parts := append([]string{value}, nonWord.Split(value, -1)...)
		for _, part := range parts {
			if part == "" {
				continue
			}
			if similarity(pw, part) >= maxSimilarity {
				return label, true
			}
		}
	}
	return "", false
}

// similarity is 2*M/T where M counts characters in matching blocks found by
// repeatedly taking the longest common substring, T is the total length.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(ra, rb)) / float64(total)
}

func matchingChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingChars(a[:i], b[:j]) + matchingChars(a[i+size:], b[j+size:])
}

// longestMatch returns the earliest longest common substring of a and b.
func longestMatch(a, b []rune) (int, int, int) {
	bestI, bestJ, best := 0, 0, 0
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
					bestI, bestJ = i-best, j-best
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, best
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
