package domain

import "fmt"

const RupeesPerLakh = 100_000

// ListingFee is the flat publication fee per listing, in rupees. It is not
// derived from the listing price.
const ListingFee int64 = 500

func LakhsToRupees(lakhs float64) int64 {
	return int64(lakhs * RupeesPerLakh)
}

func FormatPriceLakhs(price int64) string {
	return fmt.Sprintf("%.2f", float64(price)/RupeesPerLakh)
}

// FormatPriceDisplay renders a rupee amount in lakhs, switching to crores at
// 100 lakhs and above.
func FormatPriceDisplay(price int64) string {
	lakhs := float64(price) / RupeesPerLakh
	if lakhs >= 100 {
		return fmt.Sprintf("₹%.2f Cr", lakhs/100)
	}
	return fmt.Sprintf("₹%.2f L", lakhs)
}
