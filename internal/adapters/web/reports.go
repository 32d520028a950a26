package web

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/reports"
)

// dashboardStats handles GET /api/dashboard/stats.
func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

// lowStockReport handles GET /api/reports/low-stock.
func (h *Handler) lowStockReport(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.LowStock(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, products)
}

// inventoryValueReport handles GET /api/reports/inventory-value.
func (h *Handler) inventoryValueReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.InventoryValue(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// inventoryWorkbook handles GET /api/reports/inventory.xlsx.
// The workbook is rendered to memory first so a failure can still produce a JSON error.
func (h *Handler) inventoryWorkbook(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.InventoryValue(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteInventory(&buf, report); err != nil {
		writeServiceError(w, r, err)
		return
	}
	filename := "inventory-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", reports.XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// orderHistoryReport handles GET /api/reports/order-history/{product_id}.
func (h *Handler) orderHistoryReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}
	history, err := h.svc.OrderHistory(r.Context(), actorFrom(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, history)
}
