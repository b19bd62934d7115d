package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"grosave/internal/config"
	"grosave/internal/models"
	"grosave/internal/utils"
)

func main() {
	drop := flag.Bool("drop", false, "drop all tables before creating")
	seed := flag.Bool("seed", false, "insert demo seed data")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	if *drop {
		log.Println("Dropping tables...")
		if err := dropTables(ctx, db); err != nil {
			log.Fatalf("drop tables: %v", err)
		}
	}

	log.Println("Creating tables...")
	if err := createTables(ctx, db); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	if *seed {
		log.Println("Seeding demo data...")
		if err := seedData(ctx, db, cfg); err != nil {
			log.Fatalf("seed data: %v", err)
		}
	}

	log.Println("Done.")
}

// Tables in dependency order; drops run in reverse.
func tableModels() []interface{} {
	return []interface{}{
		(*models.User)(nil),
		(*models.Wallet)(nil),
		(*models.Product)(nil),
		(*models.PickupLocation)(nil),
		(*models.PickupSlot)(nil),
		(*models.Order)(nil),
		(*models.OrderEvent)(nil),
		(*models.Transaction)(nil),
		(*models.Notification)(nil),
		(*models.EarnEvent)(nil),
	}
}

func dropTables(ctx context.Context, db *bun.DB) error {
	tables := tableModels()
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(tables[i]).IfExists().Cascade().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func createTables(ctx context.Context, db *bun.DB) error {
	for _, m := range tableModels() {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func seedData(ctx context.Context, db *bun.DB, cfg *config.Config) error {
	now := time.Now()
	today := utils.AtMidnight(now.UTC())

	hub := &models.PickupLocation{
		ID:       "seed-hub-mlswm",
		Name:     "Malleswaram Kirana Hub",
		Address:  "Shop 12, Malleswaram Main Road",
		City:     "Bangalore",
		Pincode:  "560003",
		Latitude: 13.0038, Longitude: 77.5712,
		IsActive: true,
		TimeSlots: []models.LegacyTimeSlot{
			{ID: "morning", Label: "Morning", Time: "8 AM - 12 PM", Available: 15},
			{ID: "afternoon", Label: "Afternoon", Time: "12 PM - 4 PM", Available: 15},
			{ID: "evening", Label: "Evening", Time: "4 PM - 7 PM", Available: 15},
		},
	}
	if _, err := db.NewInsert().Model(hub).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	for _, slot := range []models.SlotID{models.SlotMorning, models.SlotAfternoon, models.SlotEvening} {
		row := &models.PickupSlot{
			ID:               uuid.NewString(),
			PickupLocationID: hub.ID,
			Date:             today,
			Slot:             slot,
			Label:            models.SlotLabel(slot),
			Capacity:         cfg.Pickup.DefaultSlotCapacity,
			ReservedCount:    0,
		}
		if _, err := db.NewInsert().Model(row).
			On("CONFLICT (pickup_location_id, date, slot) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	product := &models.Product{
		ID:          uuid.NewString(),
		Name:        "Organic Whole Milk",
		Brand:       "Happy Farms",
		Category:    "Dairy",
		Description: "Fresh organic whole milk from grass-fed cows.",
		Image:       "https://images.unsplash.com/photo-1563636619-e9143da7973b?w=800",
		Images: []string{
			"https://images.unsplash.com/photo-1563636619-e9143da7973b?w=800",
			"https://images.unsplash.com/photo-1550583724-b2692b85b150?w=800",
		},
		CurrentPrice:   50,
		OriginalPrice:  200,
		Discount:       75,
		ExpiryStatus:   "warning",
		ExpiryDate:     now.Add(4 * 24 * time.Hour),
		UnitsAvailable: 23,
		IsActive:       true,
		NutritionInfo:  map[string]any{"calories": 150, "protein": "8g", "fat": "8g"},
		StorageInfo: []string{
			"Keep refrigerated at 4°C or below",
			"Once opened, consume within 3 days",
		},
		SafetyInfo: []string{
			"Check seal before opening",
			"Not suitable for individuals with dairy allergies",
		},
		DynamicPricingEnabled:          true,
		DropToPriceAtHoursBeforeExpiry: 24,
		FreeAtHoursBeforeExpiry:        6,
		CreatedAt:                      now,
	}
	_, err := db.NewInsert().Model(product).Exec(ctx)
	return err
}
