package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a whitespace separated list of filter functions.
// Amounts accept either a percentage ("90%") or a plain number ("0.9").
func Parse(expr string) (Chain, error) {
	var chain Chain
	rest := strings.TrimSpace(expr)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrSyntax, rest)
		}
		end := strings.IndexByte(rest, ')')
		if end < open {
			return nil, fmt.Errorf("%w: missing ')' in %q", ErrSyntax, rest)
		}

		name := strings.ToLower(strings.TrimSpace(rest[:open]))
		arg := strings.TrimSpace(rest[open+1 : end])
		op, err := newOp(name, arg)
		if err != nil {
			return nil, err
		}
		chain = append(chain, op)
		rest = strings.TrimSpace(rest[end+1:])
	}
	return chain, nil
}

func newOp(name, arg string) (Op, error) {
	if name == "blur" {
		radius, err := parseLength(arg)
		if err != nil {
			return nil, err
		}
		return BlurOp{Radius: radius}, nil
	}

	amount, err := parseAmount(arg)
	if err != nil {
		return nil, fmt.Errorf("%v(%v): %w", name, arg, err)
	}
	switch name {
	case "grayscale":
		return Grayscale(amount), nil
	case "sepia":
		return Sepia(amount), nil
	case "saturate":
		return Saturate(amount), nil
	case "brightness":
		return Brightness(amount), nil
	case "contrast":
		return Contrast(amount), nil
	}
	return nil, fmt.Errorf("%w: unknown function %q", ErrSyntax, name)
}

// parseAmount defaults to 1 when empty, like the CSS functions do.
func parseAmount(arg string) (float64, error) {
	if arg == "" {
		return 1, nil
	}
	scale := 1.0
	if s, ok := strings.CutSuffix(arg, "%"); ok {
		arg = s
		scale = 0.01
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad amount %q", ErrSyntax, arg)
	}
	return v * scale, nil
}

func parseLength(arg string) (float64, error) {
	if arg == "" {
		return 0, nil
	}
	s := strings.TrimSuffix(arg, "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad length %q", ErrSyntax, arg)
	}
	return v, nil
}
