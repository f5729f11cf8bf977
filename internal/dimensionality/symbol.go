package dimensionality

import (
	"strconv"
	"strings"

	"github.com/roach88/siquant/internal/qerr"
)

// baseSymbols are the rendered letters for each slot.
var baseSymbols = [NumBase]string{"L", "M", "T", "I", "Θ", "N", "J"}

// baseLetters maps every accepted spelling of a base dimension to its slot.
var baseLetters = map[string]int{
	"L": Length,
	"M": Mass,
	"T": Time,
	"I": Current,
	"Θ": Temperature,
	"ϴ": Temperature,
	"@": Temperature,
	"N": Amount,
	"J": LuminousIntensity,
}

var multiplyReplacer = strings.NewReplacer(
	"•", "*",
	"·", "*",
	"⋅", "*",
	"∙", "*",
	"×", "*",
	" ", "",
	"\t", "",
)

// BaseSymbol returns the rendered letter of slot i.
func BaseSymbol(i int) string {
	return baseSymbols[i]
}

// Symbol renders d, e.g. "L•M^2/(T^2•Θ)". Unreduced exponents are kept.
func (d Dimensionality) Symbol() string {
	num := renderTerms(d.num)
	den := renderTerms(d.den)

	if len(num) == 0 && len(den) == 0 {
		return "1"
	}
	numerator := strings.Join(num, "•")
	if len(den) == 0 {
		return numerator
	}
	if numerator == "" {
		numerator = "1"
	}
	if len(den) == 1 {
		return numerator + "/" + den[0]
	}
	return numerator + "/(" + strings.Join(den, "•") + ")"
}

// String implements fmt.Stringer.
func (d Dimensionality) String() string {
	return d.Symbol()
}

func renderTerms(exps [NumBase]uint8) []string {
	var terms []string
	for i, e := range exps {
		switch e {
		case 0:
		case 1:
			terms = append(terms, baseSymbols[i])
		default:
			terms = append(terms, baseSymbols[i]+"^"+strconv.Itoa(int(e)))
		}
	}
	return terms
}

// Parse reads a dimensionality symbol such as "L•M^2•T^3/(L^2•M^3)".
//
// Accepted multiplication operators are *, •, ·, ⋅ and ∙; "/" divides and a chain
// a/b/c means a/(b•c). Exponents are signed integers written ^n or ^(n); a
// negative exponent moves the term to the other side. The temperature letter
// may be written Θ, ϴ or @. The result is not reduced.
func Parse(symbol string) (Dimensionality, error) {
	src := multiplyReplacer.Replace(symbol)
	if src == "" {
		return Dimensionality{}, qerr.Malformed(symbol, "empty dimensionality symbol")
	}
	num, den, err := parseQuotient(src, symbol)
	if err != nil {
		return Dimensionality{}, err
	}
	var d Dimensionality
	for i := 0; i < NumBase; i++ {
		if num[i] > maxExponent || den[i] > maxExponent {
			return Dimensionality{}, exponentOverflow()
		}
		d.num[i] = uint8(num[i])
		d.den[i] = uint8(den[i])
	}
	return d, nil
}

// MustParse is like Parse but panics on error. Only use it with literal symbols.
func MustParse(symbol string) Dimensionality {
	d, err := Parse(symbol)
	if err != nil {
		panic(err)
	}
	return d
}

type exponents [NumBase]int

func parseQuotient(expr, input string) (num, den exponents, err error) {
	segments, err := splitTopLevel(expr, '/', input)
	if err != nil {
		return num, den, err
	}
	for i, seg := range segments {
		factors, err := splitTopLevel(seg, '*', input)
		if err != nil {
			return num, den, err
		}
		for _, f := range factors {
			fn, fd, err := parseFactor(f, input)
			if err != nil {
				return num, den, err
			}
			if i > 0 {
				fn, fd = fd, fn
			}
			for k := 0; k < NumBase; k++ {
				num[k] += fn[k]
				den[k] += fd[k]
				if num[k] > maxExponent || den[k] > maxExponent {
					return num, den, exponentOverflow()
				}
			}
		}
	}
	return num, den, nil
}

func parseFactor(factor, input string) (num, den exponents, err error) {
	if factor == "" {
		return num, den, qerr.Malformed(input, "empty operand")
	}

	base, power := factor, 1
	if idx := lastTopLevel(factor, '^'); idx >= 0 {
		base = factor[:idx]
		power, err = parsePower(factor[idx+1:], input)
		if err != nil {
			return num, den, err
		}
		if base == "" {
			return num, den, qerr.Malformed(input, "power without a base")
		}
	}

	if wrapsWhole(base) {
		num, den, err = parseQuotient(base[1:len(base)-1], input)
		if err != nil {
			return num, den, err
		}
	} else if base != "1" {
		slot, ok := baseLetters[base]
		if !ok {
			return num, den, qerr.Malformed(input, "unknown base dimension "+strconv.Quote(base))
		}
		num[slot] = 1
	}

	if power < 0 {
		num, den = den, num
		power = -power
	}
	for k := 0; k < NumBase; k++ {
		num[k] *= power
		den[k] *= power
		if num[k] > maxExponent || den[k] > maxExponent {
			return num, den, exponentOverflow()
		}
	}
	return num, den, nil
}

func parsePower(s, input string) (int, error) {
	if wrapsWhole(s) {
		s = s[1 : len(s)-1]
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, qerr.Malformed(input, "invalid exponent "+strconv.Quote(s))
	}
	if p > maxExponent || p < -maxExponent {
		return 0, exponentOverflow()
	}
	return p, nil
}

// splitTopLevel splits s on sep, ignoring separators inside parentheses.
func splitTopLevel(s string, sep rune, input string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, qerr.Malformed(input, "unbalanced parentheses")
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + len(string(sep))
			}
		}
	}
	if depth != 0 {
		return nil, qerr.Malformed(input, "unbalanced parentheses")
	}
	return append(parts, s[start:]), nil
}

// lastTopLevel returns the byte index of the last c outside parentheses, or -1.
func lastTopLevel(s string, c byte) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// wrapsWhole reports whether s is a single parenthesized group.
func wrapsWhole(s string) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return true
}
