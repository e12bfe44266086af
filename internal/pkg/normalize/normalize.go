// Package normalize padroniza códigos digitados por usuários (IDs de área, de produto e lotes).
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Code remove espaços nas pontas e converte para maiúsculas.
// Um Caser não pode ser compartilhado entre goroutines, por isso é criado a cada chamada.
func Code(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// Text remove espaços nas pontas e colapsa espaços internos repetidos.
func Text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Lower remove espaços nas pontas e converte para minúsculas (tipos de armazenamento, papéis).
func Lower(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
