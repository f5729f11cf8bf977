package scalar

import "fmt"

// ElementType is the numeric representation a Scalar stores its value in.
// Values are ordered by rank: Float32Type < Float64Type < Complex64Type <
// Complex128Type.
type ElementType int

const (
	Float32Type ElementType = iota
	Float64Type
	Complex64Type
	Complex128Type
)

func (t ElementType) String() string {
	switch t {
	case Float32Type:
		return "float32"
	case Float64Type:
		return "float64"
	case Complex64Type:
		return "complex64"
	case Complex128Type:
		return "complex128"
	default:
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
}

// ParseElementType is the inverse of String.
func ParseElementType(s string) (ElementType, error) {
	for t := Float32Type; t <= Complex128Type; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown element type %q", s)
}

// IsComplex reports whether t stores an imaginary component.
func (t ElementType) IsComplex() bool {
	return t == Complex64Type || t == Complex128Type
}

// Width returns the bit width of each floating component: 32 or 64.
func (t ElementType) Width() int {
	if t == Float32Type || t == Complex64Type {
		return 32
	}
	return 64
}

// RealOf returns the real type with t's component width.
func (t ElementType) RealOf() ElementType {
	if t.Width() == 32 {
		return Float32Type
	}
	return Float64Type
}

// ComplexOf returns the complex type with t's component width.
func (t ElementType) ComplexOf() ElementType {
	if t.Width() == 32 {
		return Complex64Type
	}
	return Complex128Type
}

// BestElementType returns the representation that loses nothing when values
// of types a and b are combined. A 64-bit real combined with a 32-bit complex
// needs a 64-bit complex.
func BestElementType(a, b ElementType) ElementType {
	if a == Complex128Type || b == Complex128Type {
		return Complex128Type
	}
	if a.IsComplex() || b.IsComplex() {
		if a == Float64Type || b == Float64Type {
			return Complex128Type
		}
		return Complex64Type
	}
	if a == Float64Type || b == Float64Type {
		return Float64Type
	}
	return Float32Type
}

// LargerElementType returns the higher-ranked of a and b.
func LargerElementType(a, b ElementType) ElementType {
	if a > b {
		return a
	}
	return b
}

// SmallerElementType returns the lower-ranked of a and b.
func SmallerElementType(a, b ElementType) ElementType {
	if a < b {
		return a
	}
	return b
}
