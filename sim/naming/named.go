// Package naming defines the hierarchical names of components, wires and
// buffers, such as "Xbar.In[2].AR".
package naming

import (
	"fmt"
	"strconv"
	"strings"
)

// Named describes an object that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// A Token is one dot-separated level of a name. "In[2]" is the element In
// with index 2.
type Token struct {
	Elem  string
	Index []int
}

// ParseName splits a name into tokens and checks every token.
//
// Elements must start with a capital letter and must not contain
// underscores, dashes, quotes or spaces. Indices are non-negative integers in
// square brackets after the element.
func ParseName(name string) ([]Token, error) {
	parts := strings.Split(name, ".")
	tokens := make([]Token, 0, len(parts))

	for _, part := range parts {
		t, err := parseToken(part)
		if err != nil {
			return nil, fmt.Errorf("name %q: %w", name, err)
		}

		tokens = append(tokens, t)
	}

	return tokens, nil
}

func parseToken(s string) (Token, error) {
	elem, rest, found := strings.Cut(s, "[")
	if found {
		rest = "[" + rest
	}

	if err := checkElem(elem); err != nil {
		return Token{}, err
	}

	t := Token{Elem: elem}

	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end < 0 {
			return Token{}, fmt.Errorf("unbalanced brackets in %q", s)
		}

		index, err := strconv.Atoi(rest[1:end])
		if err != nil || index < 0 {
			return Token{}, fmt.Errorf("index %q in %q is not a number",
				rest[1:end], s)
		}

		t.Index = append(t.Index, index)
		rest = rest[end+1:]
	}

	return t, nil
}

func checkElem(elem string) error {
	if elem == "" {
		return fmt.Errorf("empty element")
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		return fmt.Errorf("element %q must start with a capital letter", elem)
	}

	if i := strings.IndexAny(elem, "_-\"' ]"); i >= 0 {
		return fmt.Errorf("element %q must not contain %q", elem, elem[i])
	}

	return nil
}

// NameMustBeValid panics if the name cannot be parsed.
func NameMustBeValid(name string) {
	if _, err := ParseName(name); err != nil {
		panic(err.Error())
	}
}

// BuildName joins a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex joins a parent name and an indexed element name.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName,
		elementName+"["+strconv.Itoa(index)+"]")
}
