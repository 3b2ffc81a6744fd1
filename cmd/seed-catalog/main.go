// seed-catalog fills a development business with materials, colors, products
// and suppliers so purchases can be composed against it. Rows are matched by
// name, so rerunning only adds what is missing.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-catalog -business dev-business
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/inventory_backend/config"
	"bitbucket.org/mmdatafocus/inventory_backend/models"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

type seedProduct struct {
	name     string
	material string
	color    string
	cost     string
	price    string
	quantity int
}

var (
	materials = []string{"Cotton", "Linen", "Silk", "Polyester"}
	colors    = map[string]string{
		"Red":   "#ff0000",
		"Navy":  "#000080",
		"Black": "#000000",
		"White": "#ffffff",
	}
	products = []seedProduct{
		{"Cotton Shirt", "Cotton", "White", "5000", "9500", 10},
		{"Linen Trousers", "Linen", "Navy", "12000", "21000", 4},
		{"Silk Scarf", "Silk", "Red", "8000", "15000", 6},
		{"Polyester Jacket", "Polyester", "Black", "25000", "42000", 2},
	}
	suppliers = []models.Supplier{
		{Name: "Acme Textiles", Email: "orders@acme.example", Phone: "09420000001"},
		{Name: "Golden Thread Co.", Email: "sales@goldenthread.example", Phone: "09420000002"},
	}
)

func main() {
	businessId := flag.String("business", strings.TrimSpace(os.Getenv("SEED_BUSINESS_ID")), "business id to seed")
	flag.Parse()
	if *businessId == "" {
		fmt.Fprintln(os.Stderr, "business id is required (-business or SEED_BUSINESS_ID)")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetBusinessIdInContext(ctx, *businessId)
	ctx = utils.SetUserNameInContext(ctx, "Seed")
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return seed(tx, *businessId)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	// cached directories would hide the new rows until they expire
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
		if err := models.RemoveRedisBoth(ctx, models.Supplier{BusinessId: *businessId}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to clear supplier cache: %v\n", err)
		}
	}
	fmt.Printf("Seeded catalog for business %q\n", *businessId)
}

func seed(tx *gorm.DB, businessId string) error {
	materialIds := make(map[string]int, len(materials))
	for _, name := range materials {
		m := models.Material{BusinessId: businessId, Name: name, IsActive: utils.NewTrue()}
		if err := tx.Where(models.Material{BusinessId: businessId, Name: name}).FirstOrCreate(&m).Error; err != nil {
			return fmt.Errorf("material %s: %w", name, err)
		}
		materialIds[name] = m.ID
	}

	colorIds := make(map[string]int, len(colors))
	for name, code := range colors {
		c := models.Color{BusinessId: businessId, Name: name, Code: code, IsActive: utils.NewTrue()}
		if err := tx.Where(models.Color{BusinessId: businessId, Name: name}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("color %s: %w", name, err)
		}
		colorIds[name] = c.ID
	}

	for _, sp := range products {
		p := models.Product{
			BusinessId:   businessId,
			Name:         sp.name,
			CostPrice:    decimal.RequireFromString(sp.cost),
			SellingPrice: decimal.RequireFromString(sp.price),
			Quantity:     sp.quantity,
			MaterialId:   materialIds[sp.material],
			ColorId:      colorIds[sp.color],
			IsActive:     utils.NewTrue(),
		}
		if err := tx.Where(models.Product{BusinessId: businessId, Name: sp.name}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("product %s: %w", sp.name, err)
		}
	}

	for _, s := range suppliers {
		s.BusinessId = businessId
		s.IsActive = utils.NewTrue()
		if err := tx.Where(models.Supplier{BusinessId: businessId, Name: s.Name}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("supplier %s: %w", s.Name, err)
		}
	}
	return nil
}
