// Package cli implements the interactive line-oriented shell: login, the
// role-gated dashboard, and the reporting menu.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"retailcore/internal/core"
	"retailcore/pkg/domain"
)

// Shell drives an interactive session over the service layer. One session
// processes one command to completion before accepting the next.
type Shell struct {
	service *core.Service
	reports *core.ReportGenerator
	logger  *slog.Logger

	in  *bufio.Scanner
	out io.Writer
}

// NewShell constructs a shell reading from in and writing to out.
func NewShell(service *core.Service, reports *core.ReportGenerator, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		service: service,
		reports: reports,
		logger:  logger,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run prompts for credentials until login succeeds, then dispatches dashboard
// choices until logout or end of input.
func (s *Shell) Run(ctx context.Context) error {
	for {
		actor, ok := s.login(ctx)
		if !ok {
			return nil
		}
		if !s.dashboard(ctx, actor) {
			return nil
		}
	}
}

// login returns false when input is exhausted.
func (s *Shell) login(ctx context.Context) (domain.Actor, bool) {
	for {
		username, ok := s.readLine("Username: ")
		if !ok {
			return domain.Actor{}, false
		}
		password, ok := s.readLine("Password: ")
		if !ok {
			return domain.Actor{}, false
		}
		actor, err := s.service.Authenticate(ctx, username, password)
		if err != nil {
			s.logger.Warn("login failed", slog.String("username", username))
			fmt.Fprintln(s.out, "Login failed. Try again.")
			continue
		}
		fmt.Fprintf(s.out, "Welcome %s (%s)\n", actor.Username, actor.Role)
		return actor, true
	}
}

// dashboard returns false when input is exhausted, true on logout.
func (s *Shell) dashboard(ctx context.Context, actor domain.Actor) bool {
	for {
		fmt.Fprintf(s.out, "\n===== Dashboard (%s) =====\n", actor.Role)
		fmt.Fprintln(s.out, "1. Add Product")
		fmt.Fprintln(s.out, "2. Update Product")
		fmt.Fprintln(s.out, "3. Sell Product")
		fmt.Fprintln(s.out, "4. List Products")
		fmt.Fprintln(s.out, "5. Customer Info")
		fmt.Fprintln(s.out, "6. Seller Info")
		fmt.Fprintln(s.out, "7. View Sales")
		fmt.Fprintln(s.out, "8. Search Products")
		fmt.Fprintln(s.out, "9. Logout")
		choice, ok := s.readInt("Choose: ")
		if !ok {
			return false
		}
		switch choice {
		case 1:
			s.addProduct(ctx, actor)
		case 2:
			s.updateProduct(ctx, actor)
		case 3:
			s.sellProduct(ctx, actor)
		case 4:
			s.listProducts()
		case 5:
			if !s.customerMenu(ctx, actor) {
				return false
			}
		case 6:
			if !s.sellerMenu(ctx, actor) {
				return false
			}
		case 7:
			s.viewSales(ctx)
		case 8:
			s.searchProducts(ctx)
		case 9:
			fmt.Fprintln(s.out, "Logged out.")
			return true
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) addProduct(ctx context.Context, actor domain.Actor) {
	id, _ := s.readLine("Product id: ")
	name, _ := s.readLine("Name: ")
	category, _ := s.readLine("Category: ")
	price, _ := s.readFloat("Price: ")
	stock, _ := s.readInt("Stock: ")
	_, _, err := s.service.AddProduct(ctx, actor, domain.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    stock,
	})
	if err != nil {
		fmt.Fprintf(s.out, "Add product failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Product added.")
}

func (s *Shell) updateProduct(ctx context.Context, actor domain.Actor) {
	id, _ := s.readLine("Product id: ")
	var patch domain.ProductPatch
	if name, _ := s.readLine("New name (blank keeps current): "); name != "" {
		patch.Name = &name
	}
	if category, _ := s.readLine("New category (blank keeps current): "); category != "" {
		patch.Category = &category
	}
	if raw, _ := s.readLine("New price (blank keeps current): "); raw != "" {
		price := parseFloat(raw)
		patch.Price = &price
	}
	if raw, _ := s.readLine("New stock (blank keeps current): "); raw != "" {
		stock := parseInt(raw)
		patch.Stock = &stock
	}
	_, _, err := s.service.UpdateProduct(ctx, actor, id, patch)
	if err != nil {
		fmt.Fprintf(s.out, "Update product failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Product updated.")
}

func (s *Shell) sellProduct(ctx context.Context, actor domain.Actor) {
	productID, _ := s.readLine("Product id: ")
	quantity, _ := s.readInt("Quantity: ")
	customerID, _ := s.readLine("Customer id: ")
	req := core.SaleRequest{ProductID: productID, Quantity: quantity, CustomerID: customerID}
	if _, ok := s.service.Store().GetCustomer(customerID); !ok {
		fmt.Fprintln(s.out, "New customer.")
		req.CustomerName, _ = s.readLine("Customer name: ")
		req.CustomerPhone, _ = s.readLine("Customer phone: ")
	}
	sale, _, err := s.service.Sell(ctx, actor, req)
	if err != nil {
		fmt.Fprintf(s.out, "Sale failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Sale %s recorded. Total: %.2f\n", sale.ID, sale.Total())
}

func (s *Shell) listProducts() {
	products := s.service.ListProducts()
	if len(products) == 0 {
		fmt.Fprintln(s.out, "No products.")
		return
	}
	for _, p := range products {
		fmt.Fprintf(s.out, "%s | %s | %s | %.2f | stock %d\n", p.ID, p.Name, p.Category, p.Price, p.Stock)
	}
}

// customerMenu returns false when input is exhausted.
func (s *Shell) customerMenu(ctx context.Context, actor domain.Actor) bool {
	fmt.Fprintln(s.out, "\n--- Customers ---")
	fmt.Fprintln(s.out, "1. List")
	fmt.Fprintln(s.out, "2. Add")
	fmt.Fprintln(s.out, "3. Update")
	choice, ok := s.readInt("Choose: ")
	if !ok {
		return false
	}
	switch choice {
	case 1:
		for _, c := range s.service.ListCustomers() {
			fmt.Fprintf(s.out, "%s | %s | %s\n", c.ID, c.Name, c.Phone)
		}
	case 2:
		id, _ := s.readLine("Customer id: ")
		name, _ := s.readLine("Name: ")
		phone, _ := s.readLine("Phone: ")
		if _, _, err := s.service.AddCustomer(ctx, actor, domain.Customer{ID: id, Name: name, Phone: phone}); err != nil {
			fmt.Fprintf(s.out, "Add customer failed: %v\n", err)
		} else {
			fmt.Fprintln(s.out, "Customer added.")
		}
	case 3:
		id, _ := s.readLine("Customer id: ")
		var patch domain.CustomerPatch
		if name, _ := s.readLine("New name (blank keeps current): "); name != "" {
			patch.Name = &name
		}
		if phone, _ := s.readLine("New phone (blank keeps current): "); phone != "" {
			patch.Phone = &phone
		}
		if _, _, err := s.service.UpdateCustomer(ctx, actor, id, patch); err != nil {
			fmt.Fprintf(s.out, "Update customer failed: %v\n", err)
		} else {
			fmt.Fprintln(s.out, "Customer updated.")
		}
	default:
		fmt.Fprintln(s.out, "Invalid choice.")
	}
	return true
}

// sellerMenu returns false when input is exhausted.
func (s *Shell) sellerMenu(ctx context.Context, actor domain.Actor) bool {
	fmt.Fprintln(s.out, "\n--- Sellers ---")
	fmt.Fprintln(s.out, "1. List")
	fmt.Fprintln(s.out, "2. Add")
	fmt.Fprintln(s.out, "3. Update")
	choice, ok := s.readInt("Choose: ")
	if !ok {
		return false
	}
	switch choice {
	case 1:
		for _, sl := range s.service.ListSellers() {
			fmt.Fprintf(s.out, "%s | %s\n", sl.ID, sl.Name)
		}
	case 2:
		id, _ := s.readLine("Seller id: ")
		name, _ := s.readLine("Name: ")
		if _, _, err := s.service.AddSeller(ctx, actor, domain.Seller{ID: id, Name: name}); err != nil {
			fmt.Fprintf(s.out, "Add seller failed: %v\n", err)
		} else {
			fmt.Fprintln(s.out, "Seller added.")
		}
	case 3:
		id, _ := s.readLine("Seller id: ")
		var patch domain.SellerPatch
		if name, _ := s.readLine("New name (blank keeps current): "); name != "" {
			patch.Name = &name
		}
		if _, _, err := s.service.UpdateSeller(ctx, actor, id, patch); err != nil {
			fmt.Fprintf(s.out, "Update seller failed: %v\n", err)
		} else {
			fmt.Fprintln(s.out, "Seller updated.")
		}
	default:
		fmt.Fprintln(s.out, "Invalid choice.")
	}
	return true
}

func (s *Shell) viewSales(ctx context.Context) {
	err := s.service.Store().View(ctx, func(view domain.TransactionView) error {
		sales := view.ListSales()
		if len(sales) == 0 {
			fmt.Fprintln(s.out, "No sales recorded.")
			return nil
		}
		for _, sale := range sales {
			productName := sale.ProductID
			if product, ok := view.FindProduct(sale.ProductID); ok {
				productName = product.Name
			}
			customerName := sale.CustomerID
			if customer, ok := view.FindCustomer(sale.CustomerID); ok {
				customerName = customer.Name
			}
			sellerName := sale.SellerID
			if seller, ok := view.FindSeller(sale.SellerID); ok {
				sellerName = seller.Name
			}
			fmt.Fprintf(s.out, "%s | %s x%d | %s | %s | %.2f | %s\n",
				sale.ID, productName, sale.Quantity, customerName, sellerName,
				sale.Total(), sale.Timestamp.Format("2006-01-02 15:04:05"))
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(s.out, "View sales failed: %v\n", err)
	}
}

func (s *Shell) searchProducts(ctx context.Context) {
	query, _ := s.readLine("Search: ")
	matches, err := s.service.SearchProducts(ctx, query)
	if err != nil {
		fmt.Fprintf(s.out, "Search failed: %v\n", err)
		return
	}
	if len(matches) == 0 {
		fmt.Fprintln(s.out, "No matches.")
		return
	}
	for _, p := range matches {
		fmt.Fprintf(s.out, "%s | %s | %s | %.2f | stock %d\n", p.ID, p.Name, p.Category, p.Price, p.Stock)
	}
}

// readLine prompts and returns the trimmed next input line. ok is false when
// input is exhausted.
func (s *Shell) readLine(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// readInt prompts for an integer. Malformed input yields -1 so downstream
// validation rejects it instead of crashing the loop.
func (s *Shell) readInt(prompt string) (int, bool) {
	raw, ok := s.readLine(prompt)
	if !ok {
		return -1, false
	}
	return parseInt(raw), true
}

// readFloat prompts for a number with the same -1 fallback as readInt.
func (s *Shell) readFloat(prompt string) (float64, bool) {
	raw, ok := s.readLine(prompt)
	if !ok {
		return -1, false
	}
	return parseFloat(raw), true
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return -1
	}
	return v
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return -1
	}
	return v
}
