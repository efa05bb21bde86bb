package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/loganlanou/quickview/internal/variants"
	"github.com/loganlanou/quickview/storage"
)

const (
	numProducts = 12

	// giftHandle is the product whose variants are handed out as free gifts
	giftHandle = "free-gift"
)

var sizes = []string{"S", "M", "L", "XL"}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./db/quickview.db"
	}

	store, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	fmt.Println("🌱 Seeding demo catalog...")

	colors := pickColors(3)
	products := make([]variants.Product, 0, numProducts+1)
	seen := map[string]bool{giftHandle: true}
	nextID := int64(1000)

	for len(products) < numProducts {
		title := gofakeit.ProductName()
		handle := slugify(title)
		if handle == "" || seen[handle] {
			continue
		}
		seen[handle] = true

		product := fakeProduct(handle, title, colors, &nextID)
		products = append(products, product)
		fmt.Printf("  ✓ %s (%d variants)\n", handle, len(product.Variants))
	}

	gift := fakeProduct(giftHandle, "Free Gift", colors, &nextID)
	for i := range gift.Variants {
		gift.Variants[i].Price = 0
		gift.Variants[i].CompareAtPrice = nil
		gift.Variants[i].Available = true
	}
	products = append(products, gift)

	if err := store.Seed(context.Background(), products); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	fmt.Println()
	fmt.Printf("✅ Seeded %d products\n", len(products))
	fmt.Println()
	fmt.Println("Run the service with:")
	fmt.Printf("  CATALOG_SOURCE=sqlite DB_PATH=%s FREE_GIFT_PRODUCT=%s FREE_GIFT_OPTIONS=%s\n",
		dbPath, giftHandle, strings.Join(append(append([]string{}, sizes...), colors...), ","))
}

// fakeProduct builds a Size x Color product with a random price per size
func fakeProduct(handle, title string, colors []string, nextID *int64) variants.Product {
	product := variants.Product{
		Handle:  handle,
		Title:   title,
		URL:     "/products/" + handle,
		Options: []string{"Size", "Color"},
	}

	base := int64(gofakeit.Number(8, 40)) * 100
	for i, size := range sizes {
		price := base + int64(i)*200
		for _, color := range colors {
			*nextID++
			v := variants.Variant{
				ID:        *nextID,
				Title:     size + " / " + color,
				Options:   []string{size, color},
				Price:     price,
				Available: gofakeit.Number(1, 100) > 15,
			}
			if gofakeit.Number(1, 100) <= 25 {
				compareAt := price + int64(gofakeit.Number(2, 10))*100
				v.CompareAtPrice = &compareAt
			}
			product.Variants = append(product.Variants, v)
		}
	}

	return product
}

func pickColors(n int) []string {
	seen := map[string]bool{}
	var colors []string
	for len(colors) < n {
		c := gofakeit.SafeColor()
		c = strings.ToUpper(c[:1]) + c[1:]
		if seen[c] {
			continue
		}
		seen[c] = true
		colors = append(colors, c)
	}
	return colors
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
