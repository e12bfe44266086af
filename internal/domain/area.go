package domain

// StorageType identifica o tipo de conservação de uma área do armazém.
type StorageType string

const (
	StorageRefrigerated StorageType = "refrigerado"
	StorageFrozen       StorageType = "congelado"
	StorageDry          StorageType = "seco"
)

// Valid informa se o tipo pertence ao conjunto fechado aceito pelo armazém.
func (t StorageType) Valid() bool {
	switch t {
	case StorageRefrigerated, StorageFrozen, StorageDry:
		return true
	}
	return false
}

// StorageArea representa uma área física do armazém (câmara fria, congelador, depósito seco).
// @Description Área de armazenamento identificada por um código único.
type StorageArea struct {
	ID          string      `json:"id" db:"area_id" example:"REF01"`
	Name        string      `json:"name" db:"name" example:"Câmara Fria Principal"`
	StorageType StorageType `json:"storage_type" db:"storage_type" example:"refrigerado"`
}

// AreaDetail é a área acompanhada dos lotes atualmente armazenados nela.
type AreaDetail struct {
	StorageArea
	Batches []StockBatch `json:"batches"`
}
