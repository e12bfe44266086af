package domain

// CatalogProduct é um tipo de produto vendável (o catálogo é a lista de referência).
type CatalogProduct struct {
	ID   string `json:"id" db:"product_id" example:"LEITE001"`
	Name string `json:"name" db:"name" example:"Leite UHT Integral 1L"`
}
