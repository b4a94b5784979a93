// Exports the monitored history to an Excel workbook: items, classified
// sales, and the bidder league table.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"empire-monitor/internal/config"
	"empire-monitor/internal/database"
	"empire-monitor/internal/models"
)

var (
	output = flag.String("output", "empire_report.xlsx", "workbook path to write")
	dbURL  = flag.String("db", "", "database connection string (defaults to DATABASE_URL)")
	limit  = flag.Int("limit", 10000, "max rows per sheet")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if *dbURL != "" {
		cfg.DatabaseURL = *dbURL
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeItems(f, db); err != nil {
		log.Fatal("Failed to export items:", err)
	}
	if err := writeSales(f, db); err != nil {
		log.Fatal("Failed to export sales:", err)
	}
	if err := writeBidders(f, db); err != nil {
		log.Fatal("Failed to export bidders:", err)
	}
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(*output); err != nil {
		log.Fatal("Failed to save workbook:", err)
	}
	log.Printf("Report written to %s", *output)
}

func writeItems(f *excelize.File, db *gorm.DB) error {
	if _, err := f.NewSheet("Items"); err != nil {
		return err
	}

	var items []models.Item
	if err := db.Order("last_seen DESC").Limit(*limit).Find(&items).Error; err != nil {
		return err
	}

	setRow(f, "Items", 1, []any{"Item ID", "Market Name", "First Seen", "Last Seen", "Snapshots", "Deleted At"})
	for i, it := range items {
		setRow(f, "Items", i+2, []any{
			it.ItemID,
			strOr(it.MarketName, ""),
			it.FirstSeen.Format(time.RFC3339),
			it.LastSeen.Format(time.RFC3339),
			it.TotalSnapshots,
			timeOr(it.DeletedAt),
		})
	}
	return nil
}

func writeSales(f *excelize.File, db *gorm.DB) error {
	if _, err := f.NewSheet("Sales"); err != nil {
		return err
	}

	var sales []models.DeletedItem
	if err := db.Order("deleted_at DESC").Limit(*limit).Find(&sales).Error; err != nil {
		return err
	}

	setRow(f, "Sales", 1, []any{"Item ID", "Deleted At", "Sale Type", "Had Bids", "Bid Count", "Final Bid (USD)", "Final Bidder", "Was Auction", "Original Price (USD)"})
	for i, s := range sales {
		setRow(f, "Sales", i+2, []any{
			s.ItemID,
			s.DeletedAt.Format(time.RFC3339),
			s.SaleType,
			s.HadBids,
			s.FinalBidCount,
			usdOr(s.FinalBidAmount),
			intOr(s.FinalBidder),
			s.WasAuction,
			usdOr(s.OriginalPrice),
		})
	}
	return nil
}

func writeBidders(f *excelize.File, db *gorm.DB) error {
	if _, err := f.NewSheet("Bidders"); err != nil {
		return err
	}

	var bidders []models.Bidder
	if err := db.Order("total_bids DESC").Limit(*limit).Find(&bidders).Error; err != nil {
		return err
	}

	setRow(f, "Bidders", 1, []any{"Bidder ID", "Total Bids", "Highest Bid (USD)", "Implied Spend (USD)", "First Seen", "Last Seen"})
	for i, b := range bidders {
		setRow(f, "Bidders", i+2, []any{
			b.BidderID,
			b.TotalBids,
			float64(b.HighestBid) / 100,
			float64(b.TotalSpent) / 100,
			b.FirstSeen.Format(time.RFC3339),
			b.LastSeen.Format(time.RFC3339),
		})
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func strOr(s *string, def string) string {
	if s != nil {
		return *s
	}
	return def
}

func timeOr(t *time.Time) string {
	if t != nil {
		return t.Format(time.RFC3339)
	}
	return ""
}

func intOr(v *int64) any {
	if v != nil {
		return *v
	}
	return ""
}

func usdOr(cents *int64) any {
	if cents != nil {
		return float64(*cents) / 100
	}
	return ""
}
