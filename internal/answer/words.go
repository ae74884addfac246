package answer

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

var (
	errNoNumberWords = errors.New("no number words found")
	errRedundantWord = errors.New("redundant number word")
	errMalformed     = errors.New("malformed number")
)

// numberWords maps English cardinal words to their values. "point" marks
// the start of a decimal part and carries no value of its own.
var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	"hundred": 100, "thousand": 1000, "million": 1_000_000, "billion": 1_000_000_000,
	"point": 0,
}

var digitWords = map[string]byte{
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
}

// wordsToNumber interprets an English cardinal phrase such as
// "twenty one" or "two thousand and five point five".
//
// Words that are not number words are ignored, so "three bars" is 3. A
// string of ASCII digits is returned as its value. The phrase fails if it
// contains no number words, repeats a scale word or "point", or orders
// scale words from small to large.
func wordsToNumber(text string) (float64, error) {
	s := strings.ToLower(strings.ReplaceAll(text, "-", " "))
	if isDigits(s) {
		return strconv.ParseFloat(s, 64)
	}

	var words []string
	for _, w := range strings.Fields(s) {
		if _, ok := numberWords[w]; ok {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return 0, errNoNumberWords
	}
	for _, w := range []string{"thousand", "million", "billion", "point"} {
		if count(words, w) > 1 {
			return 0, errRedundantWord
		}
	}

	var decimals []string
	if i := slices.Index(words, "point"); i >= 0 {
		decimals = words[i+1:]
		words = words[:i]
	}

	billion := slices.Index(words, "billion")
	million := slices.Index(words, "million")
	thousand := slices.Index(words, "thousand")
	if (thousand > -1 && (thousand < million || thousand < billion)) ||
		(million > -1 && million < billion) {
		return 0, errMalformed
	}

	total, err := integerPart(words, billion, million, thousand)
	if err != nil {
		return 0, err
	}
	return total + decimalPart(decimals), nil
}

func integerPart(words []string, billion, million, thousand int) (float64, error) {
	switch len(words) {
	case 0:
		return 0, nil
	case 1:
		return numberWords[words[0]], nil
	}

	var total float64
	if billion > -1 {
		n, err := group(words[:billion])
		if err != nil {
			return 0, err
		}
		total += n * 1_000_000_000
	}
	if million > -1 {
		from := 0
		if billion > -1 {
			from = billion + 1
		}
		n, err := group(words[from:million])
		if err != nil {
			return 0, err
		}
		total += n * 1_000_000
	}
	if thousand > -1 {
		from := 0
		switch {
		case million > -1:
			from = million + 1
		case billion > -1:
			from = billion + 1
		}
		n, err := group(words[from:thousand])
		if err != nil {
			return 0, err
		}
		total += n * 1000
	}

	// The hundreds group is whatever follows the last scale word.
	rest := words[max(billion, million, thousand)+1:]
	if len(rest) > 0 {
		n, err := group(rest)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// group evaluates up to four words below a scale word, e.g.
// "three hundred forty two". Longer groups keep only their first word.
func group(words []string) (float64, error) {
	if len(words) == 0 {
		return 0, errMalformed
	}
	n := make([]float64, len(words))
	for i, w := range words {
		n[i] = numberWords[w]
	}
	switch len(n) {
	case 4:
		return n[0]*n[1] + n[2] + n[3], nil
	case 3:
		return n[0]*n[1] + n[2], nil
	case 2:
		if n[0] == 100 || n[1] == 100 {
			return n[0] * n[1], nil
		}
		return n[0] + n[1], nil
	}
	return n[0], nil
}

// decimalPart turns digit words after "point" into a fraction. Any word
// that is not a single digit voids the decimal part.
func decimalPart(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	b := []byte("0.")
	for _, w := range words {
		d, ok := digitWords[w]
		if !ok {
			return 0
		}
		b = append(b, d)
	}
	v, _ := strconv.ParseFloat(string(b), 64)
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func count(words []string, w string) int {
	n := 0
	for _, x := range words {
		if x == w {
			n++
		}
	}
	return n
}
