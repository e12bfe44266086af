package domain

import "sort"

// ProductTotal é a quantidade total de um produto somada em todas as áreas.
type ProductTotal struct {
	ProductID string `json:"product_id" example:"LEITE001"`
	Name      string `json:"name" example:"Leite UHT Integral 1L"`
	Quantity  int    `json:"quantity" example:"160"`
}

// AggregateByProduct soma as quantidades por produto, ordenado pelo ID do produto.
func AggregateByProduct(batches []StockBatch) []ProductTotal {
	byProduct := make(map[string]*ProductTotal)
	for _, b := range batches {
		t, ok := byProduct[b.ProductID]
		if !ok {
			t = &ProductTotal{ProductID: b.ProductID, Name: b.Name}
			byProduct[b.ProductID] = t
		}
		t.Quantity += b.Quantity
	}

	totals := make([]ProductTotal, 0, len(byProduct))
	for _, t := range byProduct {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].ProductID < totals[j].ProductID })
	return totals
}

// ExpiryStatus classifica um lote quanto à validade.
type ExpiryStatus string

const (
	StatusExpired    ExpiryStatus = "VENCIDO"
	StatusNearExpiry ExpiryStatus = "PROXIMO_VENCIMENTO"
)

// DefaultExpiryThresholdDays é a janela padrão do alerta de vencimento.
const DefaultExpiryThresholdDays = 7

// ExpiryAlert é um lote vencido ou próximo do vencimento.
type ExpiryAlert struct {
	AreaID          string       `json:"area_id" example:"REF01"`
	AreaName        string       `json:"area_name" example:"Câmara Fria Principal"`
	Batch           StockBatch   `json:"batch"`
	Status          ExpiryStatus `json:"status" example:"PROXIMO_VENCIMENTO"`
	DaysUntilExpiry int          `json:"days_until_expiry" example:"3"`
}

// ClassifyExpiry retorna o status do lote em relação a today.
// ok é false quando a validade está além de today+thresholdDays.
func ClassifyExpiry(batch StockBatch, today Date, thresholdDays int) (status ExpiryStatus, days int, ok bool) {
	days = today.DaysUntil(batch.ExpiryDate)
	switch {
	case days < 0:
		return StatusExpired, days, true
	case days <= thresholdDays:
		return StatusNearExpiry, days, true
	}
	return "", days, false
}

// SortExpiryAlerts ordena vencidos primeiro e, dentro de cada grupo, os mais urgentes primeiro.
func SortExpiryAlerts(alerts []ExpiryAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if (a.Status == StatusExpired) != (b.Status == StatusExpired) {
			return a.Status == StatusExpired
		}
		if a.DaysUntilExpiry != b.DaysUntilExpiry {
			return a.DaysUntilExpiry < b.DaysUntilExpiry
		}
		if a.AreaID != b.AreaID {
			return a.AreaID < b.AreaID
		}
		return a.Batch.ID < b.Batch.ID
	})
}

// SortBatchesByExpiry ordena por validade crescente e, em empate, pelo ID.
func SortBatchesByExpiry(batches []StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if !batches[i].ExpiryDate.Equal(batches[j].ExpiryDate) {
			return batches[i].ExpiryDate.Before(batches[j].ExpiryDate)
		}
		return batches[i].ID < batches[j].ID
	})
}
