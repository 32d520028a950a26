// Package cli implements the one-shot operator commands run by cmd/app.
// Commands act as core.SystemActor.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inventory-service/internal/app"
	"inventory-service/internal/core"
)

const usage = `Usage: app <command> [args]

Commands:
  stock <sku|id>                   show one product's stock
  low-stock                        list products at or below their reorder point
  value                            inventory value per product and in total
  adjust <sku|id> <delta> <reason> apply a manual stock correction
  history <sku|id> [limit]         show the stock log, newest first
  po-advance <id> <status>         move a purchase order to status
  so-advance <id> <status>         move a sales order to status
  so-cancel <id>                   cancel a sales order`

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New(usage)

// Run executes a one-shot CLI command, writing its report to out.
// args is os.Args[1:]: the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, out io.Writer, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	actor := core.SystemActor

	switch args[0] {
	case "stock":
		if len(args) != 2 {
			return ErrUsage
		}
		p, err := svc.FindProduct(ctx, args[1])
		if err != nil {
			return err
		}
		printProducts(out, "STOCK", []core.Product{*p})

	case "low-stock", "low":
		products, err := svc.LowStock(ctx, actor)
		if err != nil {
			return err
		}
		printProducts(out, "LOW STOCK", products)

	case "value":
		report, err := svc.InventoryValue(ctx, actor)
		if err != nil {
			return err
		}
		printInventoryValue(out, report)

	case "adjust":
		if len(args) < 4 {
			return ErrUsage
		}
		delta, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("delta must be an integer: %w", err)
		}
		target, err := svc.FindProduct(ctx, args[1])
		if err != nil {
			return err
		}
		p, err := svc.AdjustStock(ctx, actor, app.AdjustStockRequest{
			ProductID: target.ID,
			Change:    delta,
			Reason:    strings.Join(args[3:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %+d → %d on hand\n", p.SKU, delta, p.Quantity)

	case "history":
		if len(args) < 2 || len(args) > 3 {
			return ErrUsage
		}
		limit := 20
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("limit must be an integer: %w", err)
			}
			limit = n
		}
		p, err := svc.FindProduct(ctx, args[1])
		if err != nil {
			return err
		}
		res, err := svc.StockHistory(ctx, actor, p.ID, limit)
		if err != nil {
			return err
		}
		printHistory(out, res)

	case "po-advance":
		id, status, err := idAndStatus(args)
		if err != nil {
			return err
		}
		res, err := svc.AdvancePurchaseOrder(ctx, actor, id, status)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Purchase order %d is now %s (next: %s)\n",
			res.Order.ID, res.Order.Status, nextList(res.NextStatuses))

	case "so-advance":
		id, status, err := idAndStatus(args)
		if err != nil {
			return err
		}
		res, err := svc.AdvanceSalesOrder(ctx, actor, id, status)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Sales order %d is now %s (next: %s)\n",
			res.Order.ID, res.Order.Status, nextList(res.NextStatuses))

	case "so-cancel":
		if len(args) != 2 {
			return ErrUsage
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("order id must be an integer: %w", err)
		}
		res, err := svc.CancelSalesOrder(ctx, actor, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Sales order %d is now %s\n", res.Order.ID, res.Order.Status)

	default:
		return fmt.Errorf("unknown command %q\n\n%w", args[0], ErrUsage)
	}
	return nil
}

func idAndStatus(args []string) (int, string, error) {
	if len(args) != 3 {
		return 0, "", ErrUsage
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, "", fmt.Errorf("order id must be an integer: %w", err)
	}
	return id, args[2], nil
}

func nextList(next []string) string {
	if len(next) == 0 {
		return "none"
	}
	return strings.Join(next, ", ")
}

func printProducts(out io.Writer, title string, products []core.Product) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  %s\n", title)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(products) == 0 {
		fmt.Fprintln(out, "  No products found.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-12s %-30s %8s %8s %10s\n", "SKU", "NAME", "QTY", "MIN", "PRICE")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, p := range products {
		flag := ""
		if p.IsLowStock() {
			flag = "  LOW"
		}
		fmt.Fprintf(out, "  %-12s %-30s %8d %8d %10s%s\n",
			p.SKU, p.Name, p.Quantity, p.MinThreshold, p.Price.StringFixed(2), flag)
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printInventoryValue(out io.Writer, report *core.InventoryValueReport) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintln(out, "  INVENTORY VALUE")
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  %-12s %-30s %8s %16s\n", "SKU", "NAME", "QTY", "VALUE")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, l := range report.Lines {
		fmt.Fprintf(out, "  %-12s %-30s %8d %16s\n", l.SKU, l.Name, l.Quantity, l.Value.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("-", 72))
	fmt.Fprintf(out, "  %-52s %16s\n", "TOTAL", report.Total.StringFixed(2))
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printHistory(out io.Writer, res *app.StockHistoryResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  STOCK HISTORY: %s (%s), %d on hand\n", res.Product.SKU, res.Product.Name, res.Product.Quantity)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(res.Entries) == 0 {
		fmt.Fprintln(out, "  No stock changes recorded.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-20s %8s %8s  %s\n", "WHEN", "CHANGE", "AFTER", "REASON")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, e := range res.Entries {
		fmt.Fprintf(out, "  %-20s %+8d %8d  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Change, e.QuantityAfter, e.Reason)
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}
