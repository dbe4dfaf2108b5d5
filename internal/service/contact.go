package service

import (
	"fmt"
	"net/url"
	"strings"

	"moveis-catalog/internal/pricing"
)

const (
	whatsAppBaseURL       = "https://wa.me/"
	generalContactMessage = "Olá! Gostaria de conhecer os móveis da Carvalho Móveis."
)

// ContactLinks builds the WhatsApp links of the storefront funnel.
type ContactLinks struct {
	phone string
}

func NewContactLinks(phone string) ContactLinks {
	return ContactLinks{phone: strings.TrimPrefix(strings.TrimSpace(phone), "+")}
}

// ProductMessage is the pre-filled message for a product, quoting the price
// the customer pays.
func (c ContactLinks) ProductMessage(product pricing.ResolvedProduct) string {
	return fmt.Sprintf("Olá! Gostaria de mais informações sobre o %s no valor de R$ %s. Poderia me ajudar?",
		product.Name, product.PriceToPay())
}

func (c ContactLinks) ProductURL(product pricing.ResolvedProduct) string {
	return c.withText(c.ProductMessage(product))
}

func (c ContactLinks) GeneralURL() string {
	return c.withText(generalContactMessage)
}

func (c ContactLinks) Phone() string {
	return c.phone
}

func (c ContactLinks) withText(message string) string {
	// Spaces are sent as %20.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsAppBaseURL + c.phone + "?text=" + text
}
