package cli

import (
	"context"
	"fmt"
)

// RunReportsMenu drives the interactive reporting menu until the user backs
// out or input is exhausted.
func (s *Shell) RunReportsMenu(ctx context.Context) error {
	for {
		fmt.Fprintln(s.out, "\n===== Reports =====")
		fmt.Fprintln(s.out, "1. Daily Revenue")
		fmt.Fprintln(s.out, "2. Top-Selling Products")
		fmt.Fprintln(s.out, "3. Revenue By Seller")
		fmt.Fprintln(s.out, "4. Low Stock")
		fmt.Fprintln(s.out, "5. Back")
		choice, ok := s.readInt("Choose: ")
		if !ok {
			return nil
		}
		switch choice {
		case 1:
			if err := s.dailyRevenue(ctx); err != nil {
				return err
			}
		case 2:
			if err := s.topProducts(ctx); err != nil {
				return err
			}
		case 3:
			if err := s.revenueBySeller(ctx); err != nil {
				return err
			}
		case 4:
			if err := s.lowStock(ctx); err != nil {
				return err
			}
		case 5:
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) dailyRevenue(ctx context.Context) error {
	rows, err := s.reports.DailyRevenue(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No sales recorded.")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(s.out, "%s | %.2f\n", row.Date, row.Revenue)
	}
	return nil
}

func (s *Shell) topProducts(ctx context.Context) error {
	limit, ok := s.readInt("How many (blank for default): ")
	if !ok {
		return nil
	}
	rows, err := s.reports.TopProducts(ctx, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No sales recorded.")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(s.out, "%s | %s | %d\n", row.ProductID, row.Name, row.Quantity)
	}
	return nil
}

func (s *Shell) revenueBySeller(ctx context.Context) error {
	rows, err := s.reports.RevenueBySeller(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No sales recorded.")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(s.out, "%s | %s | %.2f\n", row.SellerID, row.Name, row.Revenue)
	}
	return nil
}

func (s *Shell) lowStock(ctx context.Context) error {
	threshold, ok := s.readInt("Threshold (blank for default): ")
	if !ok {
		return nil
	}
	rows, err := s.reports.LowStock(ctx, threshold)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No products at or below threshold.")
		return nil
	}
	for _, p := range rows {
		fmt.Fprintf(s.out, "%s | %s | stock %d\n", p.ID, p.Name, p.Stock)
	}
	return nil
}
