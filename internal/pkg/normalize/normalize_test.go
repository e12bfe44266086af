package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	assert.Equal(t, "LOTEA", Code("  lotea "))
	assert.Equal(t, "LOTE-Ç1", Code("lote-ç1"))
	assert.Equal(t, "", Code("   "))
}

func TestText(t *testing.T) {
	assert.Equal(t, "Câmara Fria Principal", Text("  Câmara   Fria Principal "))
}

func TestLower(t *testing.T) {
	assert.Equal(t, "refrigerado", Lower(" Refrigerado"))
	assert.Equal(t, "gerente", Lower("GERENTE"))
}
