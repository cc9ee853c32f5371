package polymarket

import (
	"sort"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// bookResponse es la respuesta cruda de CLOB /book. Los precios y tamaños
// llegan como strings.
type bookResponse struct {
	Bids []rawLevel `json:"bids"`
	Asks []rawLevel `json:"asks"`
}

type rawLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// toDomain convierte el book crudo al dominio, descartando niveles sin
// precio o tamaño y garantizando el orden: bids descendente, asks
// ascendente. La API no documenta el orden de los niveles.
func (b bookResponse) toDomain(assetID string) domain.OrderBook {
	book := domain.OrderBook{
		AssetID: assetID,
		Bids:    toEntries(b.Bids),
		Asks:    toEntries(b.Asks),
	}
	sort.Slice(book.Bids, func(i, j int) bool { return book.Bids[i].Price > book.Bids[j].Price })
	sort.Slice(book.Asks, func(i, j int) bool { return book.Asks[i].Price < book.Asks[j].Price })
	return book
}

func toEntries(levels []rawLevel) []domain.BookEntry {
	entries := make([]domain.BookEntry, 0, len(levels))
	for _, l := range levels {
		price := domain.ParsePrice(l.Price)
		size := domain.ParsePrice(l.Size)
		if price <= 0 || size <= 0 {
			continue
		}
		entries = append(entries, domain.BookEntry{Price: price, Size: size})
	}
	return entries
}
