package pipeline

import (
	"fmt"
	"strings"

	"pricewatch/internal/types"
)

// FormatPrice renders a price the way the French storefront shows it,
// comma decimal separator and a trailing euro sign: 1234.5 -> "1234,50€".
func FormatPrice(price float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", price), ".", ",", 1) + "€"
}

// ToViews converts resolved offers into the client-facing response shape.
func ToViews(offers []types.ResolvedOffer) []types.OfferView {
	views := make([]types.OfferView, 0, len(offers))
	for _, offer := range offers {
		views = append(views, types.OfferView{
			Title:          offer.Title,
			Price:          offer.Price,
			PriceFormatted: FormatPrice(offer.Price),
			Source:         offer.MerchantName,
			Link:           offer.Link,
			Image:          offer.Image,
		})
	}
	return views
}
