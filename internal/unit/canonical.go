package unit

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/siquant/internal/qerr"
)

// Term is one symbol raised to a positive power on one side of an Expression.
type Term struct {
	Symbol string
	Power  int
}

// Expression is a parsed unit expression. Both sides are consolidated (each
// symbol appears at most once per side) and sorted by symbol. A symbol may
// appear on both sides; cancellation only happens through Reduced.
type Expression struct {
	Numerator   []Term
	Denominator []Term
}

// MaxPower is the largest power a symbol may carry on one side of an
// expression, matching the exponent range of a dimensionality.
const MaxPower = math.MaxUint8

const (
	multiplyOp = "*"
	divideOp   = "/"
	joiner     = "•"
)

var operatorReplacer = strings.NewReplacer(
	"×", multiplyOp,
	"•", multiplyOp,
	"⋅", multiplyOp,
	"∙", multiplyOp,
	"·", multiplyOp,
	"÷", divideOp,
	"∕", divideOp,
	"⁄", divideOp,
	"μ", "µ",
	"Μ", "µ",
	"ɥ", "µ",
	"𝜇", "µ",
	"𝝁", "µ",
	"𝝻", "µ",
)

// ParseExpression parses a free-form unit expression such as "kg•m^2/s^2",
// "(m^2*kg/s)^4" or "m/s/s". The result is not reduced: "m/m" keeps m on both
// sides.
func ParseExpression(expr string) (Expression, error) {
	src := normalize(expr)
	if src == "" {
		return Expression{}, qerr.Malformed(expr, "empty unit expression")
	}
	acc := newCounts()
	if err := parseQuotient(src, expr, acc, 1); err != nil {
		return Expression{}, err
	}
	return acc.expression(), nil
}

// Canonicalize returns the canonical key of expr. It is idempotent and
// insensitive to operand order and operator spelling.
func Canonicalize(expr string) (string, error) {
	e, err := ParseExpression(expr)
	if err != nil {
		return "", err
	}
	return e.String(), nil
}

// Reduce returns the canonical key of expr after cancelling symbols that
// appear in both numerator and denominator, so "m•kg/m" becomes "kg" and "m/m"
// becomes "1".
func Reduce(expr string) (string, error) {
	e, err := ParseExpression(expr)
	if err != nil {
		return "", err
	}
	return e.Reduced().String(), nil
}

// EquivalentExpressions reports whether a and b have the same canonical key.
func EquivalentExpressions(a, b string) (bool, error) {
	ca, err := Canonicalize(a)
	if err != nil {
		return false, err
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return false, err
	}
	return ca == cb, nil
}

// String renders the canonical key.
func (e Expression) String() string {
	if e.IsEmpty() {
		return "1"
	}
	numerator := renderTerms(e.Numerator)
	if numerator == "" {
		numerator = "1"
	}
	switch len(e.Denominator) {
	case 0:
		return numerator
	case 1:
		return numerator + divideOp + renderTerms(e.Denominator)
	default:
		return numerator + divideOp + "(" + renderTerms(e.Denominator) + ")"
	}
}

// IsEmpty reports whether e is the dimensionless expression "1".
func (e Expression) IsEmpty() bool {
	return len(e.Numerator) == 0 && len(e.Denominator) == 0
}

// IsAtomic reports whether e is a single symbol to the first power.
func (e Expression) IsAtomic() bool {
	return len(e.Denominator) == 0 && len(e.Numerator) == 1 && e.Numerator[0].Power == 1
}

// Reduced cancels each symbol's numerator power against its denominator power.
func (e Expression) Reduced() Expression {
	acc := newCounts()
	acc.add(e, 1)
	for sym, n := range acc.num {
		d := acc.den[sym]
		switch {
		case n > d:
			acc.num[sym], acc.den[sym] = n-d, 0
		default:
			acc.num[sym], acc.den[sym] = 0, d-n
		}
	}
	return acc.expression()
}

// Multiply concatenates the terms of e and o without cancelling.
func (e Expression) Multiply(o Expression) Expression {
	acc := newCounts()
	acc.add(e, 1)
	acc.add(o, 1)
	return acc.expression()
}

// Divide concatenates e with the inverse of o without cancelling.
func (e Expression) Divide(o Expression) Expression {
	return e.Multiply(o.Power(-1))
}

// Power raises every term to n. A negative n swaps numerator and denominator;
// zero yields the empty expression.
func (e Expression) Power(n int) Expression {
	if n == 0 {
		return Expression{}
	}
	acc := newCounts()
	acc.add(e, n)
	return acc.expression()
}

// Root takes the nth root of every term. It reports false when some power is
// not divisible by n.
func (e Expression) Root(n int) (Expression, bool) {
	if n <= 0 {
		return Expression{}, false
	}
	root := Expression{
		Numerator:   make([]Term, 0, len(e.Numerator)),
		Denominator: make([]Term, 0, len(e.Denominator)),
	}
	for _, t := range e.Numerator {
		if t.Power%n != 0 {
			return Expression{}, false
		}
		root.Numerator = append(root.Numerator, Term{Symbol: t.Symbol, Power: t.Power / n})
	}
	for _, t := range e.Denominator {
		if t.Power%n != 0 {
			return Expression{}, false
		}
		root.Denominator = append(root.Denominator, Term{Symbol: t.Symbol, Power: t.Power / n})
	}
	return root, true
}

// Symbols returns the distinct symbols used on either side, sorted.
func (e Expression) Symbols() []string {
	seen := make(map[string]struct{}, len(e.Numerator)+len(e.Denominator))
	for _, t := range e.Numerator {
		seen[t.Symbol] = struct{}{}
	}
	for _, t := range e.Denominator {
		seen[t.Symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func renderTerms(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		if t.Power == 1 {
			parts[i] = t.Symbol
		} else {
			parts[i] = t.Symbol + "^" + strconv.Itoa(t.Power)
		}
	}
	return strings.Join(parts, joiner)
}

func normalize(expr string) string {
	return strings.TrimSpace(operatorReplacer.Replace(norm.NFC.String(expr)))
}

// counts accumulates powers per symbol while parsing. It is local to one parse
// call.
type counts struct {
	num map[string]int
	den map[string]int
}

func newCounts() *counts {
	return &counts{num: make(map[string]int), den: make(map[string]int)}
}

// add accumulates e raised to power into c.
func (c *counts) add(e Expression, power int) {
	num, den := c.num, c.den
	if power < 0 {
		num, den = den, num
		power = -power
	}
	for _, t := range e.Numerator {
		num[t.Symbol] += t.Power * power
	}
	for _, t := range e.Denominator {
		den[t.Symbol] += t.Power * power
	}
}

func (c *counts) expression() Expression {
	return Expression{Numerator: sortedTerms(c.num), Denominator: sortedTerms(c.den)}
}

func sortedTerms(m map[string]int) []Term {
	var terms []Term
	for sym, p := range m {
		if p > 0 {
			terms = append(terms, Term{Symbol: sym, Power: p})
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Symbol < terms[j].Symbol })
	return terms
}

// parseQuotient accumulates expr raised to power into acc. The first top-level
// segment is the numerator; every later segment divides.
func parseQuotient(expr, input string, acc *counts, power int) error {
	segments, err := splitTopLevel(expr, '/', input)
	if err != nil {
		return err
	}
	for i, seg := range segments {
		sign := power
		if i > 0 {
			sign = -power
		}
		factors, err := splitTopLevel(seg, '*', input)
		if err != nil {
			return err
		}
		for _, f := range factors {
			if err := parseFactor(strings.TrimSpace(f), input, acc, sign); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseFactor(factor, input string, acc *counts, power int) error {
	if factor == "" {
		return qerr.Malformed(input, "empty operand")
	}
	if factor[0] == '^' {
		return qerr.Malformed(input, "power without a base")
	}

	base, p := factor, 1
	if idx := lastTopLevel(factor, '^'); idx >= 0 {
		base = strings.TrimSpace(factor[:idx])
		var err error
		p, err = parsePower(strings.TrimSpace(factor[idx+1:]), input)
		if err != nil {
			return err
		}
		if base == "" {
			return qerr.Malformed(input, "power without a base")
		}
	}
	power *= p
	if power > MaxPower || power < -MaxPower {
		return powerOverflow(input)
	}

	if wrapsWhole(base) {
		inner := strings.TrimSpace(base[1 : len(base)-1])
		if inner == "" {
			return qerr.Malformed(input, "empty parentheses")
		}
		if power == 0 {
			return parseQuotient(inner, input, newCounts(), 1)
		}
		return parseQuotient(inner, input, acc, power)
	}

	if base == "1" {
		return nil
	}
	if isNumber(base) {
		return qerr.Malformed(input, "numeric factor "+strconv.Quote(base)+" in unit expression")
	}
	if strings.ContainsAny(base, "()^") || strings.IndexFunc(base, unicode.IsSpace) >= 0 {
		return qerr.Malformed(input, "invalid unit symbol "+strconv.Quote(base))
	}

	switch {
	case power > 0:
		acc.num[base] += power
	case power < 0:
		acc.den[base] -= power
	}
	if acc.num[base] > MaxPower || acc.den[base] > MaxPower {
		return powerOverflow(input)
	}
	return nil
}

func powerOverflow(input string) error {
	return qerr.Overflow("power in unit expression " + strconv.Quote(input) + " exceeds " + strconv.Itoa(MaxPower))
}

func parsePower(s, input string) (int, error) {
	if wrapsWhole(s) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.ContainsAny(s, "./") {
		return 0, qerr.Malformed(input, "fractional power "+strconv.Quote(s)+" is not allowed")
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, qerr.Malformed(input, "invalid power "+strconv.Quote(s))
	}
	if p > MaxPower || p < -MaxPower {
		return 0, powerOverflow(input)
	}
	return p, nil
}

// isNumber reports whether s is a numeric literal such as "2" or "1e3".
func isNumber(s string) bool {
	if s == "" || !(s[0] == '.' || s[0] >= '0' && s[0] <= '9') {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// splitTopLevel splits s on sep, ignoring separators inside parentheses.
func splitTopLevel(s string, sep byte, input string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
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
				start = i + 1
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
