package market

import (
	"fmt"
	"strings"
)

// MaxSymbolLen bounds ticker length; anything longer is a data error.
const MaxSymbolLen = 10

// Symbol is a validated instrument identifier, normalized to uppercase
// (e.g. "SPY", "QQQ"). The zero value is invalid; construct via NewSymbol.
type Symbol string

// NewSymbol validates and normalizes a raw ticker string.
func NewSymbol(s string) (Symbol, error) {
	if s == "" {
		return "", fmt.Errorf("symbol cannot be empty")
	}
	if len(s) > MaxSymbolLen {
		return "", fmt.Errorf("symbol too long: %d characters (max %d)", len(s), MaxSymbolLen)
	}
	for _, c := range s {
		if !isAlnum(c) {
			return "", fmt.Errorf("symbol %q contains invalid characters (alphanumeric only)", s)
		}
	}
	return Symbol(strings.ToUpper(s)), nil
}

// MustSymbol is NewSymbol that panics on error. For literals in tests and setup.
func MustSymbol(s string) Symbol {
	sym, err := NewSymbol(s)
	if err != nil {
		panic(err)
	}
	return sym
}

func (s Symbol) String() string { return string(s) }

func isAlnum(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
