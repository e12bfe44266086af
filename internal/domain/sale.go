package domain

import "time"

// SaleRecord é o registro imutável de uma venda concluída.
type SaleRecord struct {
	ID             int64     `json:"id" db:"sale_id" example:"1"`
	ProductID      string    `json:"product_id" db:"product_id" example:"LEITE001"`
	Name           string    `json:"name" db:"name" example:"Leite UHT Integral 1L"`
	Lot            string    `json:"lot" db:"lot" example:"LOTEA"`
	ExpirySnapshot string    `json:"expiry_snapshot" db:"expiry_snapshot" example:"2025-12-20"`
	Quantity       int       `json:"quantity" db:"quantity" example:"10"`
	Destination    string    `json:"destination" db:"destination" example:"Mercado Central"`
	AreaID         string    `json:"area_id" db:"area_id" example:"REF01"`
	UserID         string    `json:"user_id" db:"user_id" example:"joao.silva"`
	SoldAt         time.Time `json:"sold_at" db:"sold_at"`
}

// SaleRequest é o payload de registro de venda (retirada + registro).
type SaleRequest struct {
	AreaID string `json:"-"`
	BatchKey
	Quantity    int    `json:"quantity" example:"10"`
	Destination string `json:"destination" example:"Mercado Central"`
	UserID      string `json:"-"`
}

// SaleReceipt é a resposta do registro de venda.
type SaleReceipt struct {
	Sale       SaleRecord     `json:"sale"`
	Withdrawal WithdrawResult `json:"withdrawal"`
}

// SaleFilter restringe a listagem do histórico de vendas.
type SaleFilter struct {
	AreaID    string
	ProductID string
	Limit     int
}
