// Package eval вычисляет арифметические выражения для инструмента calculator.
// Поддерживаются сложение, вычитание, умножение, деление, скобки,
// унарный минус и десятичные числа. Разбор - рекурсивный спуск по грамматике:
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = число | "(" expr ")" | ("+" | "-") factor
package eval

import (
	"fmt"
	"strconv"
	"strings"
)

type parser struct {
	input string
	pos   int
}

// Evaluate вычисляет значение выражения expression.
// Любой недопустимый символ, незакрытая скобка или деление на ноль
// возвращаются ошибкой.
func Evaluate(expression string) (float64, error) {
	p := &parser{input: expression}
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("empty expression")
	}
	result, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return result, nil
}

func (p *parser) parseExpr() (float64, error) {
	result, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.consume('+'):
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			result += rhs
		case p.consume('-'):
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			result -= rhs
		default:
			return result, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	result, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.consume('*'):
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			result *= rhs
		case p.consume('/'):
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			result /= rhs
		default:
			return result, nil
		}
	}
}

func (p *parser) parseFactor() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	switch {
	case p.consume('('):
		result, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.consume(')') {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		return result, nil
	case p.consume('-'):
		result, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -result, nil
	case p.consume('+'):
		return p.parseFactor()
	default:
		return p.parseNumber()
	}
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}

func (p *parser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpaces() {
	p.pos += len(p.input[p.pos:]) - len(strings.TrimLeft(p.input[p.pos:], " \t"))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
