package domain

import "math"

// MaxBatchQuantity é o maior saldo que um lote pode ter; cabe no INTEGER dos dois bancos.
const MaxBatchQuantity = math.MaxInt32

// StockBatch é uma quantidade de um produto do catálogo que compartilha lote e validade,
// guardada em uma única área. Quantity é sempre >= 1 enquanto o lote existir.
type StockBatch struct {
	ID         int64  `json:"id" db:"batch_id" example:"1"`
	AreaID     string `json:"area_id" db:"area_id" example:"REF01"`
	ProductID  string `json:"product_id" db:"product_id" example:"LEITE001"`
	Name       string `json:"name" db:"name" example:"Leite UHT Integral 1L"`
	Quantity   int    `json:"quantity" db:"quantity" example:"100"`
	ExpiryDate Date   `json:"expiry_date" db:"expiry_date" swaggertype:"string" example:"2025-12-20"`
	Lot        string `json:"lot" db:"lot" example:"LOTEA"`
}

// BatchKey localiza um lote dentro de uma área: pelo ID ou pelo par (produto, lote).
type BatchKey struct {
	ID        int64  `json:"batch_id,omitempty" example:"1"`
	ProductID string `json:"product_id,omitempty" example:"LEITE001"`
	Lot       string `json:"lot,omitempty" example:"LOTEA"`
}

// HasID informa se a chave usa o identificador substituto.
func (k BatchKey) HasID() bool { return k.ID > 0 }

// Valid exige o ID ou o par completo (produto, lote).
func (k BatchKey) Valid() bool {
	return k.HasID() || (k.ProductID != "" && k.Lot != "")
}

// Matches compara a chave com um lote já armazenado.
func (k BatchKey) Matches(b StockBatch) bool {
	if k.HasID() {
		return b.ID == k.ID
	}
	return b.ProductID == k.ProductID && b.Lot == k.Lot
}

// IntakeRequest é o payload de entrada de estoque em uma área.
type IntakeRequest struct {
	AreaID     string `json:"-"`
	ProductID  string `json:"product_id" example:"LEITE001"`
	Quantity   int    `json:"quantity" example:"100"`
	ExpiryDate string `json:"expiry_date" example:"2025-12-20"`
	Lot        string `json:"lot" example:"lotea"`
}

// WithdrawRequest é o payload de retirada de estoque.
type WithdrawRequest struct {
	AreaID string `json:"-"`
	BatchKey
	Quantity int `json:"quantity" example:"40"`
}

// WithdrawResult expõe o lote antes da baixa e o estado resultante.
type WithdrawResult struct {
	Before            StockBatch `json:"before"`
	RemainingQuantity int        `json:"remaining_quantity" example:"60"`
	Removed           bool       `json:"removed" example:"false"`
}

// BatchUpdate é a correção manual de um lote feita pelo gerente.
// Quantity igual a zero remove o lote.
type BatchUpdate struct {
	Quantity   int    `json:"quantity" example:"50"`
	ExpiryDate string `json:"expiry_date" example:"2025-12-31"`
	Lot        string `json:"lot" example:"LOTEB"`
}
