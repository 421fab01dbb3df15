package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/stockroom-ims/stockroom/internal/analytics"
)

// WriteSnapshotCSV serialises a dashboard snapshot as sectioned CSV: headline
// metrics, then top products, then the reason breakdown.
func WriteSnapshotCSV(w io.Writer, snap analytics.Snapshot) error {
	writer := csv.NewWriter(w)
	records := [][]string{
		{"Metric", "Value"},
		{"Generated At", snap.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Products", strconv.Itoa(snap.TotalProducts)},
		{"Categories", strconv.Itoa(snap.CategoryCount)},
		{"Categories In Use", strconv.Itoa(snap.CategoriesInUse)},
		{"Suppliers", strconv.Itoa(snap.SupplierCount)},
		{"Low Stock Items", strconv.Itoa(snap.LowStockCount)},
		{"Estimated Inventory Value", snap.EstimatedInventoryValue.StringFixed(2)},
		{"Stock Out This Month", strconv.Itoa(snap.TotalStockOutThisMonth)},
		{},
		{"Top Product", "Quantity Sold"},
	}
	for _, p := range snap.TopProducts {
		records = append(records, []string{p.Name, strconv.Itoa(p.Quantity)})
	}
	records = append(records, []string{}, []string{"Reason", "Stock Out Movements"})
	for _, r := range snap.ReasonBreakdown {
		records = append(records, []string{r.Reason, strconv.Itoa(r.Count)})
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}
